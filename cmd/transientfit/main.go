package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"transientfit/adapters/catalog"
	"transientfit/adapters/sampler"
	"transientfit/app"
	"transientfit/domain/model"
	"transientfit/domain/prior"
	"transientfit/domain/transient"
	"transientfit/internal"
	"transientfit/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		internal.DefaultLogger.Debug("no .env file found, using system environment")
	}

	rootCmd := &cobra.Command{
		Use:   "transientfit",
		Short: "Fit transient light-curve models and compare their evidence",
	}

	rootCmd.AddCommand(
		newModelsCmd(),
		newFitCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List registered light-curve models and their parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := model.DefaultRegistry()
			for _, name := range registry.Names() {
				m, err := registry.Get(name)
				if err != nil {
					return err
				}
				fmt.Printf("%-24s %v\n", m.Name, m.Params)
				if m.Description != "" {
					fmt.Printf("    %s\n", m.Description)
				}
			}
			return nil
		},
	}
}

func newFitCmd() *cobra.Command {
	var (
		name             string
		sourceType       string
		modelName        string
		dataMode         string
		priorsFile       string
		outDir           string
		nlive            int
		walks            int
		seed             int64
		resume           bool
		photonIndexPrior bool
	)

	cmd := &cobra.Command{
		Use:   "fit [light-curve-file]",
		Short: "Fit one model to one transient light curve",
		Long: `Fit one model to one transient light curve.

Example: transientfit fit SN2011kl_data.csv --source-type supernova --model powerlaw --data-mode flux_density --priors powerlaw.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			mode, err := transient.ParseDataMode(dataMode)
			if err != nil {
				return err
			}
			reader := catalog.NewDataReader(args[0])
			tr, err := reader.ReadLightCurve("", mode)
			if err != nil {
				return err
			}
			if name == "" {
				name = tr.Name
			}

			var priors prior.Dict
			if priorsFile != "" {
				priors, err = prior.Load(priorsFile)
				if err != nil {
					return err
				}
			}

			if outDir == "" {
				outDir = cfg.Paths.OutDir
			}
			if nlive == 0 {
				nlive = cfg.Sampler.NLive
			}
			if walks == 0 {
				walks = cfg.Sampler.Walks
			}

			service := app.NewFitService(model.DefaultRegistry(), sampler.NewMetropolis(), app.Config{
				PriorDir: cfg.Paths.PriorDir,
				OutDir:   outDir,
			})
			result, err := service.Fit(cmd.Context(), app.FitRequest{
				Name:                name,
				SourceType:          sourceType,
				Model:               modelName,
				Transient:           tr,
				Priors:              priors,
				UsePhotonIndexPrior: photonIndexPrior,
				NLive:               nlive,
				Walks:               walks,
				Resume:              resume,
				Seed:                seed,
			})
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(result, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Event name (defaults to the file name)")
	cmd.Flags().StringVar(&sourceType, "source-type", "GRB", "Transient class: GRB, SGRB, LGRB, supernova, kilonova, TDE, or prompt")
	cmd.Flags().StringVar(&modelName, "model", "", "Registered model to fit")
	cmd.Flags().StringVar(&dataMode, "data-mode", "flux", "Data mode: luminosity, flux, flux_density, photometry, counts, or ttes")
	cmd.Flags().StringVar(&priorsFile, "priors", "", "Prior file (defaults to {PRIOR_DIR}/{model}.yaml)")
	cmd.Flags().StringVar(&outDir, "outdir", "", "Output root directory")
	cmd.Flags().IntVar(&nlive, "nlive", 0, "Prior draws for the evidence estimate")
	cmd.Flags().IntVar(&walks, "walks", 0, "Burn-in steps before posterior samples are kept")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed (0 draws one from the clock)")
	cmd.Flags().BoolVar(&resume, "resume", false, "Reuse a saved result when one exists")
	cmd.Flags().BoolVar(&photonIndexPrior, "photon-index-prior", false, "Condition the power-law slope prior on the measured photon index")
	cobra.CheckErr(cmd.MarkFlagRequired("model"))

	return cmd
}
