package scheme

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapKeyReader struct {
	keys map[string][]byte
}

func (r *mapKeyReader) Load(ctx context.Context, id string) ([]byte, error) {
	key, ok := r.keys[id]
	if !ok {
		return nil, fmt.Errorf("key not found")
	}
	return key, nil
}

func TestClassifierPersistentKey(t *testing.T) {
	reader := &mapKeyReader{keys: map[string][]byte{
		"abc": {0xAA, 0xBB},
	}}
	classifier := NewClassifier(reader, nil)

	t.Run("stored key", func(t *testing.T) {
		key, ok := classifier.PersistentKey(KeyURL("abc"))
		require.True(t, ok)
		assert.Equal(t, []byte{0xAA, 0xBB}, key)
	})

	t.Run("missing key", func(t *testing.T) {
		_, ok := classifier.PersistentKey(KeyURL("nope"))
		assert.False(t, ok)
	})

	t.Run("non-key URL", func(t *testing.T) {
		u, _ := url.Parse("offline-https://host/master.m3u8")
		_, ok := classifier.PersistentKey(u)
		assert.False(t, ok)
	})
}

func TestClassifierOriginalURL(t *testing.T) {
	classifier := NewClassifier(&mapKeyReader{}, nil)

	u, _ := url.Parse("offline-https://host/v.m3u8")
	original, ok := classifier.OriginalURL(u)
	require.True(t, ok)
	assert.Equal(t, "https://host/v.m3u8", original.String())

	plain, _ := url.Parse("https://host/v.m3u8")
	_, ok = classifier.OriginalURL(plain)
	assert.False(t, ok)
}
