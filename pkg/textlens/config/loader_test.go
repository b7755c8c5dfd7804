package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderAllEmpty(t *testing.T) {
	loader := Loader{}

	comp, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), comp.Config)
	require.NotNil(t, comp.StopWords)
	assert.Empty(t, comp.StopWords.Words())
}

func TestLoaderMergesStoplistFile(t *testing.T) {
	list := writeFile(t, "stoplist.yaml", "terms: [the, and]\n")
	cfgPath := writeFile(t, "textlens.yaml", "stopwords: \"this,is\"\nstoplist_file: "+list+"\n")

	comp, err := (&Loader{ConfigPath: cfgPath}).Load()
	require.NoError(t, err)
	assert.Equal(t, "this,is,the,and", comp.StopWords.Raw())
	assert.Equal(t, []string{"and", "is", "the", "this"}, comp.StopWords.Words().All())
}

func TestLoaderStoplistOverride(t *testing.T) {
	list := writeFile(t, "override.yaml", "terms: [egor]\n")
	cfgPath := writeFile(t, "textlens.yaml", "stoplist_file: /nonexistent/stoplist.yaml\n")

	comp, err := (&Loader{ConfigPath: cfgPath, StoplistPath: list}).Load()
	require.NoError(t, err)
	assert.Equal(t, "egor", comp.StopWords.Raw())
	assert.Equal(t, list, comp.Config.StoplistPath)
}

func TestLoaderNonExistentStoplist(t *testing.T) {
	_, err := (&Loader{StoplistPath: "/nonexistent/stoplist.yaml"}).Load()
	assert.Error(t, err)
}

func TestLoaderNonExistentConfig(t *testing.T) {
	_, err := (&Loader{ConfigPath: "/nonexistent/textlens.yaml"}).Load()
	assert.Error(t, err)
}
