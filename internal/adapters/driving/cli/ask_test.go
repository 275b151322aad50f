package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoplens/shoplens-cli/internal/core/domain"
)

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [question]", askCmd.Use)
}

func TestAskCmd_Short(t *testing.T) {
	assert.Equal(t, "Ask a question about the catalog", askCmd.Short)
}

func TestAskCmd_Long(t *testing.T) {
	assert.Contains(t, askCmd.Long, "grounded")
	assert.Contains(t, askCmd.Long, "cites")
}

func TestAskCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestAskCmd_HasTopKFlag(t *testing.T) {
	flag := askCmd.Flags().Lookup("top-k")
	require.NotNil(t, flag, "top-k flag should exist")
	assert.Equal(t, "k", flag.Shorthand)
	assert.Equal(t, "0", flag.DefValue)
}

func TestAskCmd_StreamsAnswer(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "how much are the X200?"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "The X200 headphones cost $89.")
	assert.Contains(t, buf.String(), "Sources (confidence 91%)")
	assert.Contains(t, buf.String(), "[1] X200 Headphones")
}

func TestAskCmd_NoStream(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "--no-stream", "how much are the X200?"})
	defer func() {
		rootCmd.SetArgs(nil)
		askNoStream = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "The X200 headphones cost $89.")
	assert.Contains(t, buf.String(), "Sources (confidence 91%)")
}

func TestAskCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"ask", "--json", "how much are the X200?"})
	defer func() {
		rootCmd.SetArgs(nil)
		askJSON = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "\"answer\"")
	assert.Contains(t, buf.String(), "\"sources\"")
	assert.Contains(t, buf.String(), "\"confidence\"")
}

func TestAskCmd_ServiceNotConfigured(t *testing.T) {
	oldService := assistantService
	assistantService = nil
	defer func() {
		assistantService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "anything"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "assistant service not configured")
}

func TestAskCmd_ServiceError(t *testing.T) {
	oldService := assistantService
	assistantService = &mockAssistantServiceError{}
	defer func() {
		assistantService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "anything"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ask failed")
}

func TestAskCmd_StreamErrorEvent(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	assistantService = &mockAssistantService{
		events: []domain.StreamEvent{
			{Type: domain.StreamEventSources, Sources: nil},
			{Type: domain.StreamEventError, Text: "generation failed midway"},
		},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask", "anything"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "generation failed midway")
}

func TestAskOptions_BuildsFilters(t *testing.T) {
	askCategory = "Audio"
	askBrand = "Acme"
	askMaxPrice = 100
	askMinRating = 4
	defer func() {
		askCategory = ""
		askBrand = ""
		askMaxPrice = 0
		askMinRating = 0
	}()

	opts := askOptions()

	require.NotNil(t, opts.Filters)
	assert.Equal(t, "Audio", opts.Filters.Category)
	assert.Equal(t, "Acme", opts.Filters.Brand)
	require.NotNil(t, opts.Filters.MaxPrice)
	assert.Equal(t, 100.0, *opts.Filters.MaxPrice)
	require.NotNil(t, opts.Filters.MinRating)
	assert.Equal(t, 4.0, *opts.Filters.MinRating)
}

func TestAskOptions_NoFiltersWhenUnset(t *testing.T) {
	opts := askOptions()
	assert.Nil(t, opts.Filters)
}

func TestPrintSources_EmptySkipsOutput(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)

	printSources(rootCmd, nil, 0)

	assert.Empty(t, buf.String())
}
