package main

import (
	"fmt"
	"path/filepath"

	"github.com/fadilmartias/cv-screening/internal/model"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>",
	Short: "Extract and index a local cv or project_report file, printing its document id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		docType := model.DocumentType(cmd.Flag("type").Value.String())

		log, err := newLogger()
		if err != nil {
			return err
		}
		defer log.Sync()

		db, err := connectDB(log)
		if err != nil {
			return err
		}
		documents, _, err := newDocumentUsecase(cmd.Context(), db, log)
		if err != nil {
			return err
		}
		doc, err := documents.Upload(cmd.Context(), docType, filepath.Base(args[0]), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), doc.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
	ingestCmd.Flags().StringP("type", "t", string(model.DocumentTypeCV), "document type: cv or project_report")
}
