package runtime

import (
	"github.com/stretchr/testify/require"
	"room-engine/errors"
	"testing"
	"testing/fstest"
)

func TestCensoredLoader_LoadAll(t *testing.T) {
	req := require.New(t)
	files := fstest.MapFS{
		"censored/en.txt":    {Data: []byte("Idiot\r\n\n# comment\nmoron\n")},
		"censored/fr.txt":    {Data: []byte("abruti\nidiot\n")},
		"censored/README.md": {Data: []byte("ignored")},
	}

	data, err := NewCensoredLoader(files).LoadAll("censored")

	req.NoError(err)
	req.Equal([]string{"abruti", "idiot", "moron"}, data.Words)
	req.ElementsMatch([]string{"en", "fr"}, data.Languages)
}

func TestCensoredLoader_Refusals(t *testing.T) {
	req := require.New(t)

	_, err := NewCensoredLoader(fstest.MapFS{"censored/en.txt": {Data: []byte("\n\n")}}).LoadAll("censored")
	req.ErrorIs(err, errors.ErrEmptyWords)

	_, err = NewCensoredLoader(fstest.MapFS{"censored/nested/en.txt": {Data: []byte("idiot")}}).LoadAll("censored")
	req.ErrorIs(err, errors.ErrOnlyCensoredFiles)

	_, err = NewCensoredLoader(fstest.MapFS{}).LoadAll("censored")
	req.Error(err)
}

func TestLoadModerator_EmbeddedLists(t *testing.T) {
	req := require.New(t)

	moderator, err := LoadModerator(testLogger(), '*')

	req.NoError(err)
	req.True(moderator.Rejects("xX_idiot_Xx"))
	req.False(moderator.Rejects("Alice"))
}
