package sl_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/zentask/internal/lib/sl"
)

func TestErr_ReturnsCorrectAttr(t *testing.T) {
	err := errors.New("something went wrong")
	attr := sl.Err(err)

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, slog.StringValue("something went wrong"), attr.Value)
}

func TestErr_NilError(t *testing.T) {
	attr := sl.Err(nil)

	assert.Equal(t, "error", attr.Key)
	assert.Equal(t, "<nil>", attr.Value.String())
}

func TestSetupLogger(t *testing.T) {
	t.Run("local пишет текст и debug", func(t *testing.T) {
		var buf bytes.Buffer
		log := sl.SetupLogger(sl.EnvLocal, &buf)
		log.Debug("hello", slog.String("k", "v"))

		assert.Contains(t, buf.String(), "level=DEBUG")
		assert.Contains(t, buf.String(), "k=v")
	})

	t.Run("prod пишет JSON без debug", func(t *testing.T) {
		var buf bytes.Buffer
		log := sl.SetupLogger(sl.EnvProd, &buf)
		log.Debug("hidden")
		log.Info("shown", sl.Err(errors.New("boom")))

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "shown", rec["msg"])
		assert.Equal(t, "boom", rec["error"])
	})

	t.Run("dev пишет JSON с debug", func(t *testing.T) {
		var buf bytes.Buffer
		sl.SetupLogger(sl.EnvDev, &buf).Debug("visible")
		assert.Contains(t, buf.String(), `"level":"DEBUG"`)
	})
}
