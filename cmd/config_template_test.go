package cmd

import (
	"testing"

	"github.com/cthoyt/robot-obo-tool/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"
)

func TestConfigTemplates_Parse(t *testing.T) {
	t.Run("full", func(t *testing.T) {
		var c config.Config
		require.NoError(t, yaml.Unmarshal([]byte(GetConfigTemplateFull()), &c))
		assert.Equal(t, 7074, c.Main.ListenPort)
		assert.Equal(t, "0 4 * * *", c.Mirror.Cron)
		assert.Len(t, c.Mirror.Sources, 2)
		assert.Equal(t, "s3", c.Storage.Name)
	})

	t.Run("serve", func(t *testing.T) {
		var c config.Config
		require.NoError(t, yaml.Unmarshal([]byte(GetConfigTemplateServe()), &c))
		assert.Equal(t, 7074, c.Main.ListenPort)
	})

	t.Run("mirror", func(t *testing.T) {
		var c config.Config
		require.NoError(t, yaml.Unmarshal([]byte(GetConfigTemplateMirror()), &c))
		require.Len(t, c.Mirror.Sources, 1)
		assert.Equal(t, "pato", c.Mirror.Sources[0].Name)
	})
}
