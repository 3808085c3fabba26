package commands_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/delta/cmd/delta/commands"
	"go.trai.ch/delta/internal/app"
	"go.trai.ch/delta/internal/build"
	"go.trai.ch/delta/internal/core/domain"
)

type mockApp struct {
	renderFunc func(ctx context.Context, out io.Writer, opts app.RenderOptions) error
	exportFunc func(ctx context.Context, out io.Writer, opts app.ExportOptions) error
	playFunc   func(ctx context.Context, out io.Writer, opts app.PlayOptions) error
	configFunc func(out io.Writer) error
}

func (m *mockApp) Render(ctx context.Context, out io.Writer, opts app.RenderOptions) error {
	if m.renderFunc != nil {
		return m.renderFunc(ctx, out, opts)
	}
	return nil
}

func (m *mockApp) Export(ctx context.Context, out io.Writer, opts app.ExportOptions) error {
	if m.exportFunc != nil {
		return m.exportFunc(ctx, out, opts)
	}
	return nil
}

func (m *mockApp) Play(ctx context.Context, out io.Writer, opts app.PlayOptions) error {
	if m.playFunc != nil {
		return m.playFunc(ctx, out, opts)
	}
	return nil
}

func (m *mockApp) WriteConfig(out io.Writer) error {
	if m.configFunc != nil {
		return m.configFunc(out)
	}
	return nil
}

func TestCommands_Render(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.RenderOptions
		mock := &mockApp{
			renderFunc: func(_ context.Context, _ io.Writer, opts app.RenderOptions) error {
				captured = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"render", "--at", "3.5s", "--shift", "1s", "--overlay", "/renders/a", "--metrics"})
		require.NoError(t, cli.Execute(context.Background()))

		assert.Equal(t, domain.Seconds(3.5), captured.At)
		assert.Equal(t, domain.Seconds(1), captured.Shift)
		assert.Equal(t, "/renders/a", captured.Sample.Overlay)
		assert.True(t, captured.Metrics)
	})

	t.Run("returns error on render failure", func(t *testing.T) {
		mock := &mockApp{
			renderFunc: func(_ context.Context, _ io.Writer, _ app.RenderOptions) error {
				return errors.New("simulated error")
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"render"})
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))

		err := cli.Execute(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "simulated error")
	})

	t.Run("writes to the command output", func(t *testing.T) {
		mock := &mockApp{
			renderFunc: func(_ context.Context, out io.Writer, _ app.RenderOptions) error {
				_, err := io.WriteString(out, "rendered")
				return err
			},
		}

		cli := commands.New(mock)
		buf := new(bytes.Buffer)
		cli.SetOutput(buf, buf)
		cli.SetArgs([]string{"render"})
		require.NoError(t, cli.Execute(context.Background()))
		assert.Equal(t, "rendered", buf.String())
	})
}

func TestCommands_Export(t *testing.T) {
	t.Run("wires flags correctly", func(t *testing.T) {
		var captured app.ExportOptions
		mock := &mockApp{
			exportFunc: func(_ context.Context, _ io.Writer, opts app.ExportOptions) error {
				captured = opts
				return nil
			},
		}

		cli := commands.New(mock)
		cli.SetArgs([]string{"export", "out", "--from", "2s", "--to", "4s"})
		require.NoError(t, cli.Execute(context.Background()))

		assert.Equal(t, "out", captured.Dir)
		assert.Equal(t, domain.Seconds(2), captured.From)
		assert.Equal(t, domain.Seconds(4), captured.To)
		assert.False(t, captured.Metrics)
	})

	t.Run("requires a directory", func(t *testing.T) {
		mock := &mockApp{
			exportFunc: func(_ context.Context, _ io.Writer, _ app.ExportOptions) error {
				panic("should not be called")
			},
		}

		cli := commands.New(mock)
		cli.SetOutput(new(bytes.Buffer), new(bytes.Buffer))
		cli.SetArgs([]string{"export"})
		require.Error(t, cli.Execute(context.Background()))
	})
}

func TestCommands_Play(t *testing.T) {
	var captured app.PlayOptions
	mock := &mockApp{
		playFunc: func(_ context.Context, _ io.Writer, opts app.PlayOptions) error {
			captured = opts
			return nil
		},
	}

	cli := commands.New(mock)
	cli.SetArgs([]string{"play", "--from", "500ms"})
	require.NoError(t, cli.Execute(context.Background()))
	assert.Equal(t, domain.Seconds(0.5), captured.From)
}

func TestCommands_Config(t *testing.T) {
	mock := &mockApp{
		configFunc: func(out io.Writer) error {
			_, err := io.WriteString(out, "output:\n    width: 64\n")
			return err
		},
	}

	cli := commands.New(mock)
	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"config"})
	require.NoError(t, cli.Execute(context.Background()))
	assert.Contains(t, buf.String(), "width: 64")
}

func TestCommands_Version(t *testing.T) {
	mock := &mockApp{}
	cli := commands.New(mock)

	buf := new(bytes.Buffer)
	cli.SetOutput(buf, buf)
	cli.SetArgs([]string{"version"})

	err := cli.Execute(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), build.Version)
}
