package logging_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eth2-core/beacon-engine/config/logging"
)

func TestConfigureFormatterAcceptsKnownFormats(t *testing.T) {
	require.NoError(t, logging.ConfigureFormatter("text", false))
	require.NoError(t, logging.ConfigureFormatter("json", false))
}

func TestConfigureFormatterRejectsUnknownFormat(t *testing.T) {
	require.Error(t, logging.ConfigureFormatter("fluentd", false))
}
