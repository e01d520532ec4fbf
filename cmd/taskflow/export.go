package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gosuda/taskflow/internal/archive"
	"github.com/gosuda/taskflow/internal/config"
)

func newExportCmd() *cobra.Command {
	var latest bool

	cmd := &cobra.Command{
		Use:   "export <board-id>",
		Short: "Archive a board to object storage",
		Long: `Export a snapshot of a board as YAML to the S3 bucket named by
TASKFLOW_S3_BUCKET. With --latest, print the most recent archived snapshot
instead of writing a new one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid board id %q", args[0])
			}
			return runExport(cmd.Context(), cmd, id, latest)
		},
	}
	cmd.Flags().BoolVar(&latest, "latest", false, "print the latest archived snapshot")
	return cmd
}

func runExport(ctx context.Context, cmd *cobra.Command, id uuid.UUID, latest bool) error {
	s3cfg, err := config.LoadS3()
	if err != nil {
		return err
	}

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	store, err := archive.NewS3Store(ctx, archive.S3Config{
		Endpoint:     s3cfg.Endpoint,
		Bucket:       s3cfg.Bucket,
		Region:       s3cfg.Region,
		AccessKey:    s3cfg.AccessKey,
		SecretKey:    s3cfg.SecretKey,
		UsePathStyle: s3cfg.PathStyle,
	})
	if err != nil {
		return err
	}
	arch := archive.New(store, s3cfg.Prefix, archive.WithLogger(s.log))

	if latest {
		doc, err := arch.Latest(ctx, id)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}

	b, err := s.client.GetBoard(ctx, id)
	if err != nil {
		return fmt.Errorf("load board: %w", err)
	}
	key, err := arch.Export(ctx, b)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %q to s3://%s/%s\n", b.Title, s3cfg.Bucket, key)
	return nil
}
