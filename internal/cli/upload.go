package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"shotbox/internal/capture"
	"shotbox/internal/client"
	"shotbox/internal/config"
	"shotbox/internal/submit"
	"shotbox/internal/uploader"
)

type uploadOptions struct {
	category string
	tags     []string
	paste    bool
}

func newUploadCmd(cfg *config.AppConfig) *cobra.Command {
	opts := &uploadOptions{}

	cmd := &cobra.Command{
		Use:   "upload [file]",
		Short: "Upload a screenshot",
		Long: "Upload an image file, or with --paste the image read from stdin, " +
			"filed under one category and up to five tags.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(cmd, cfg, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.category, "category", "c", "", "Category: research, design, bug or feedback")
	cmd.Flags().StringSliceVarP(&opts.tags, "tag", "t", nil, "Tag to attach; repeat for more")
	cmd.Flags().BoolVar(&opts.paste, "paste", false, "Read the image from stdin as a clipboard paste")

	return cmd
}

func runUpload(cmd *cobra.Command, cfg *config.AppConfig, opts *uploadOptions, args []string) error {
	logger := commandLogger(cmd, cfg)

	if opts.paste == (len(args) == 1) {
		return errors.New("provide either a file argument or --paste")
	}

	capt := capture.New(capture.NewPreviews())
	submission := submit.New(client.New(cfg.Client.Endpoint, cfg.Client.Timeout))
	defer submission.Close()
	form := uploader.NewForm(capt, submission)

	submission.OnChange(func(s submit.Snapshot) {
		logger.Debug().Str("state", s.State.String()).Msg("submission state changed")
	})

	if opts.paste {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		doc := capture.NewDocument()
		unmount := capt.Mount(doc)
		doc.Paste([]capture.ClipboardItem{capture.ClipboardItemFromBytes(data)})
		unmount()
		if _, ok := capt.Candidate(); !ok {
			logger.Debug().Int("bytes", len(data)).Msg("paste carried no image")
		}
	} else {
		file, err := capture.FileFromPath(args[0])
		if err != nil {
			return err
		}
		capt.SelectFromPicker(file)
	}

	form.SetCategory(opts.category)
	for _, tag := range opts.tags {
		if !form.AddTag(tag) {
			logger.Warn().Str("tag", tag).Msg("tag ignored")
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Client.Timeout)
	defer cancel()

	result, err := form.Submit(ctx)
	if err != nil {
		var validation *submit.ValidationError
		if errors.As(err, &validation) {
			return validation
		}
		logger.Error().Err(err).Str("endpoint", cfg.Client.Endpoint).Msg("upload failed")
		return submit.ErrUploadFailed
	}

	logger.Info().Str("id", result.ID).Str("name", result.Name).Int64("size", result.Size).Msg("upload stored")

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
