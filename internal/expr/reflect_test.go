package expr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reflectUser struct {
	Login string `value:"login"`
}

type reflectCommit struct {
	SHA    string      `value:"-"`
	Author reflectUser `value:"author"`
	Title  string      `value:"title"`
}

type reflectRecord struct {
	Title    string          `value:"title"`
	Body     *string         `value:"body"`
	Count    int             `value:"count"`
	Merged   bool            `value:"merged"`
	Created  time.Time       `value:"created_at"`
	Commits  []reflectCommit `value:"commits"`
	Untagged string
	hidden   string
}

func TestReflectStruct(t *testing.T) {
	created := time.Date(2017, 11, 2, 3, 4, 5, 0, time.UTC)
	rec := reflectRecord{
		Title:    "Add parser",
		Body:     nil,
		Count:    3,
		Merged:   true,
		Created:  created,
		Commits:  []reflectCommit{{SHA: "deadbeef", Author: reflectUser{Login: "octocat"}, Title: "first"}},
		Untagged: "plain",
		hidden:   "never",
	}

	v := Reflect(rec)
	dict, ok := v.(Dictionary)
	require.True(t, ok)

	assert.Equal(t, String("Add parser"), dict["title"])
	assert.Equal(t, String(""), dict["body"], "nil optional renders as empty string")
	assert.Equal(t, Numeral(3), dict["count"])
	assert.Equal(t, Boolean(true), dict["merged"])
	assert.Equal(t, String("2017-11-02T03:04:05Z"), dict["created_at"])
	assert.Equal(t, String("plain"), dict["untagged"])

	commits, ok := dict["commits"].(List)
	require.True(t, ok)
	require.Len(t, commits, 1)
	commit, ok := commits[0].(Lit).V.(Dictionary)
	require.True(t, ok)
	assert.Equal(t, String("first"), commit["title"])
	assert.Equal(t, Dictionary{"login": String("octocat")}, commit["author"])
}

func TestReflectHiddenField(t *testing.T) {
	v := Reflect(reflectCommit{SHA: "secret", Title: "x"})
	dict := v.(Dictionary)
	assert.NotContains(t, dict, "sha")
	assert.NotContains(t, dict, "-")
	for _, val := range dict {
		assert.NotEqual(t, String("secret"), val)
	}
}

func TestReflectOptionalString(t *testing.T) {
	body := "some text"
	v := Reflect(struct {
		Body *string `value:"body"`
	}{Body: &body})
	assert.Equal(t, Dictionary{"body": String("some text")}, v)
}

func TestReflectNavigable(t *testing.T) {
	rec := reflectRecord{Commits: []reflectCommit{{Title: "a"}, {Title: "b"}}}
	ok, err := EvalRule(".commits length = 2", Reflect(rec))
	require.NoError(t, err)
	assert.True(t, ok)
}
