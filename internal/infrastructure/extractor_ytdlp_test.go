package infrastructure

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/x-fetch-go/internal/domain"
)

const testVideoURL = "https://x.com/user/status/1790000000000000000"

func newTestYTDLPExtractor(fs afero.Fs, runner domain.CommandRunner) *YTDLPExtractor {
	config := &domain.VideoConfig{
		Binary:      "yt-dlp",
		Format:      domain.DefaultVideoFormat,
		MergeFormat: "mp4",
	}
	return NewYTDLPExtractor(config, runner, fs, nil, nil)
}

func TestYTDLPExtractor_BuildArgs(t *testing.T) {
	extractor := newTestYTDLPExtractor(afero.NewMemMapFs(), &fakeRunner{})

	args := extractor.BuildArgs(testVideoURL, "/work dir/req")

	assert.Equal(t, domain.DefaultVideoFormat, argAfter(args, "--format"))
	assert.Equal(t, "mp4", argAfter(args, "--merge-output-format"))
	assert.Equal(t, "ffmpeg:-c:v copy -c:a copy", argAfter(args, "--postprocessor-args"))
	assert.Equal(t, filepath.Join("/work dir/req", "%(id)s_%(height)sp.%(ext)s"), argAfter(args, "-o"))
	assert.Contains(t, args, "--no-write-thumbnail")
	assert.Contains(t, args, "--no-write-info-json")
	assert.Contains(t, args, "--quiet")
	assert.Contains(t, args, "--no-warnings")
	assert.Contains(t, args, "--dump-json")
	assert.Contains(t, args, "--no-simulate")

	// URL is always the last, single argument, after the end of options
	assert.Equal(t, testVideoURL, args[len(args)-1])
	assert.Equal(t, "--", args[len(args)-2])
}

func TestYTDLPExtractor_BuildArgs_DashURLStaysPositional(t *testing.T) {
	extractor := newTestYTDLPExtractor(afero.NewMemMapFs(), &fakeRunner{})

	args := extractor.BuildArgs("--batch-file=/etc/passwd", "/work")

	require.GreaterOrEqual(t, len(args), 2)
	assert.Equal(t, "--", args[len(args)-2])
	assert.Equal(t, "--batch-file=/etc/passwd", args[len(args)-1])
}

func TestYTDLPExtractor_Success(t *testing.T) {
	fs := afero.NewMemMapFs()
	runner := &fakeRunner{
		run: func(ctx context.Context, binary string, args []string) (*domain.CommandResult, error) {
			dir := filepath.Dir(argAfter(args, "-o"))
			data := make([]byte, 2*1024*1024)
			require.NoError(t, afero.WriteFile(fs, filepath.Join(dir, "1790_720p.mp4"), data, 0644))
			return &domain.CommandResult{
				Stdout: `{"id": "1790", "width": 1280, "height": 720, "fps": 30.0, "ext": "mp4"}` + "\n",
			}, nil
		},
	}
	extractor := newTestYTDLPExtractor(fs, runner)

	outcome := extractor.Extract(context.Background(), testVideoURL, "/work/req-1")

	require.True(t, outcome.Success())
	require.Equal(t, domain.KindVideo, outcome.Kind())
	assert.Nil(t, outcome.Images)
	assert.Equal(t, "1790", outcome.Video.ID)
	assert.Equal(t, "1280x720", outcome.Video.Resolution())
	require.NotNil(t, outcome.Video.FPS)
	assert.Equal(t, 30.0, *outcome.Video.FPS)
	assert.Equal(t, "/work/req-1/1790_720p.mp4", outcome.Video.FilePath)
	assert.Equal(t, 2.0, outcome.Video.SizeMB)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, "yt-dlp", runner.calls[0].binary)
}

func TestYTDLPExtractor_SizeFromDiskNotMetadata(t *testing.T) {
	fs := afero.NewMemMapFs()
	runner := &fakeRunner{
		run: func(ctx context.Context, binary string, args []string) (*domain.CommandResult, error) {
			require.NoError(t, afero.WriteFile(fs, "/work/9_1080p.mp4", make([]byte, 1024*1024), 0644))
			return &domain.CommandResult{
				Stdout: `{"id": "9", "width": 1920, "height": 1080, "ext": "mp4", "filesize": 999999999}`,
			}, nil
		},
	}

	outcome := newTestYTDLPExtractor(fs, runner).Extract(context.Background(), testVideoURL, "/work")

	require.True(t, outcome.Success())
	assert.Equal(t, 1.0, outcome.Video.SizeMB)
	assert.Nil(t, outcome.Video.FPS)
}

func TestYTDLPExtractor_FallsBackToReportedPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	runner := &fakeRunner{
		run: func(ctx context.Context, binary string, args []string) (*domain.CommandResult, error) {
			require.NoError(t, afero.WriteFile(fs, "/work/9_1080p.webm", make([]byte, 512), 0644))
			return &domain.CommandResult{
				Stdout: `{"id": "9", "width": 1920, "height": 1080, "ext": "mp4",
					"requested_downloads": [{"filepath": "/work/9_1080p.webm"}]}`,
			}, nil
		},
	}

	outcome := newTestYTDLPExtractor(fs, runner).Extract(context.Background(), testVideoURL, "/work")

	require.True(t, outcome.Success())
	assert.Equal(t, "/work/9_1080p.webm", outcome.Video.FilePath)
}

func TestYTDLPExtractor_MissingFileHasZeroSize(t *testing.T) {
	runner := &fakeRunner{
		run: func(ctx context.Context, binary string, args []string) (*domain.CommandResult, error) {
			return &domain.CommandResult{Stdout: `{"id": "9", "ext": "mp4"}`}, nil
		},
	}

	outcome := newTestYTDLPExtractor(afero.NewMemMapFs(), runner).Extract(context.Background(), testVideoURL, "/work")

	require.True(t, outcome.Success())
	assert.Equal(t, "/work/9_NAp.mp4", outcome.Video.FilePath)
	assert.Equal(t, 0.0, outcome.Video.SizeMB)
	assert.Equal(t, "0x0", outcome.Video.Resolution())
}

func TestYTDLPExtractor_Failures(t *testing.T) {
	tests := []struct {
		name    string
		result  *domain.CommandResult
		err     error
		timeout time.Duration
		message string
	}{
		{
			name:    "no video in post",
			result:  &domain.CommandResult{ExitCode: 1, Stderr: "ERROR: [twitter] 1790: No video could be found in this tweet\n"},
			message: "ERROR: [twitter] 1790: No video could be found in this tweet",
		},
		{
			name:    "non-zero exit without stderr",
			result:  &domain.CommandResult{ExitCode: 2},
			message: "yt-dlp exited with code 2",
		},
		{
			name:    "binary missing",
			err:     errors.New(`failed to run yt-dlp: exec: "yt-dlp": executable file not found in $PATH`),
			message: `failed to run yt-dlp: exec: "yt-dlp": executable file not found in $PATH`,
		},
		{
			name:    "timeout",
			err:     domain.ErrCommandTimeout,
			timeout: 5 * time.Minute,
			message: "yt-dlp timed out after 5m0s",
		},
		{
			name:    "no info record",
			result:  &domain.CommandResult{Stdout: "\n"},
			message: "yt-dlp reported no media",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{
				run: func(ctx context.Context, binary string, args []string) (*domain.CommandResult, error) {
					return tt.result, tt.err
				},
			}
			extractor := newTestYTDLPExtractor(afero.NewMemMapFs(), runner)
			extractor.config.Timeout = tt.timeout

			outcome := extractor.Extract(context.Background(), testVideoURL, "/work")

			assert.False(t, outcome.Success())
			assert.Equal(t, tt.message, outcome.Error)
		})
	}
}

func TestYTDLPExtractor_PanicBecomesFailure(t *testing.T) {
	runner := &fakeRunner{
		run: func(ctx context.Context, binary string, args []string) (*domain.CommandResult, error) {
			panic("boom")
		},
	}

	outcome := newTestYTDLPExtractor(afero.NewMemMapFs(), runner).Extract(context.Background(), testVideoURL, "/work")

	assert.False(t, outcome.Success())
	assert.Equal(t, "boom", outcome.Error)
}

func TestYTDLPExtractor_AppliesTimeout(t *testing.T) {
	var hadDeadline bool
	runner := &fakeRunner{
		run: func(ctx context.Context, binary string, args []string) (*domain.CommandResult, error) {
			_, hadDeadline = ctx.Deadline()
			return &domain.CommandResult{ExitCode: 1}, nil
		},
	}
	extractor := newTestYTDLPExtractor(afero.NewMemMapFs(), runner)
	extractor.config.Timeout = time.Minute

	extractor.Extract(context.Background(), testVideoURL, "/work")

	assert.True(t, hadDeadline)
}

func TestYTDLPExtractor_Name(t *testing.T) {
	assert.Equal(t, "yt-dlp", newTestYTDLPExtractor(afero.NewMemMapFs(), &fakeRunner{}).Name())
}

func TestParseYTDLPInfo_MultipleEntries(t *testing.T) {
	stdout := `{"id": "first", "height": 720, "ext": "mp4"}` + "\n" + `{"id": "second", "height": 480, "ext": "mp4"}` + "\n"

	info, err := parseYTDLPInfo(stdout)
	require.NoError(t, err)
	assert.Equal(t, "first", info.ID)
	require.NotNil(t, info.Height)
	assert.Equal(t, 720, *info.Height)
}

func TestParseYTDLPInfo_Invalid(t *testing.T) {
	_, err := parseYTDLPInfo("{not json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse yt-dlp output")
}
