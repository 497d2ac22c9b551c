package main

import (
	"github.com/fadilmartias/cv-screening/internal/usecase"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Index the reference corpus (job description, case study brief, scoring rubrics)",
	RunE: func(cmd *cobra.Command, _ []string) error {
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
		if err := documents.SeedReference(cmd.Context(), usecase.DefaultReferenceCorpus); err != nil {
			return err
		}
		log.Info("reference corpus seeded")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
