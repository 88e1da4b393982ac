package main

import (
	"fmt"
	"os"
	"path/filepath"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/urfave/cli/v2"

	"github.com/veloflow/service-template/internal/registry"
	"github.com/veloflow/service-template/internal/scaffold"
	"github.com/veloflow/service-template/pkg/logger"
)

var validStages = map[string]bool{
	"dev":     true,
	"qa":      true,
	"staging": true,
	"prod":    true,
}

func main() {
	app := &cli.App{
		Name:  "create-service",
		Usage: "Scaffold and register VeloFlow services from this template",
		Commands: []*cli.Command{
			{
				Name:  "new",
				Usage: "Copy the template into a new service directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Kebab-case service name, e.g. pdf-to-xls",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "display-name",
						Usage: "Human-readable service name",
					},
					&cli.StringFlag{
						Name:  "module",
						Usage: "Go module path for the new service",
					},
					&cli.StringFlag{
						Name:  "template-dir",
						Usage: "Template root to copy from",
						Value: ".",
					},
					&cli.StringFlag{
						Name:  "output-dir",
						Usage: "Destination directory (defaults to ./<name>)",
					},
				},
				Action: runNew,
			},
			{
				Name:  "register",
				Usage: "Register the deployed service in the stage's service registry",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "stage",
						Usage:    "Deployment stage: dev, qa, staging or prod",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "manifest",
						Usage:   "Path to the service manifest",
						Value:   "service.yaml",
						EnvVars: []string{"SERVICE_MANIFEST"},
					},
					&cli.StringFlag{
						Name:    "region",
						Usage:   "AWS region",
						Value:   "us-east-1",
						EnvVars: []string{"AWS_REGION"},
					},
				},
				Action: runRegister,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("create-service failed")
	}
}

func runNew(c *cli.Context) error {
	name := c.String("name")

	dest := c.String("output-dir")
	if dest == "" {
		dest = filepath.Join(".", name)
	}

	err := scaffold.Generate(c.String("template-dir"), dest, scaffold.Options{
		ServiceName: name,
		DisplayName: c.String("display-name"),
		ModulePath:  c.String("module"),
	})
	if err != nil {
		return err
	}

	logger.Log.Info().
		Str("service", name).
		Str("dir", dest).
		Msg("Scaffolded new service")
	fmt.Printf("Created %s in %s\n", name, dest)
	fmt.Println("Next steps: edit internal/processor, update service.yaml, deploy, then run `create-service register`.")
	return nil
}

func runRegister(c *cli.Context) error {
	stage := c.String("stage")
	if !validStages[stage] {
		return fmt.Errorf("invalid stage %q (use dev, qa, staging or prod)", stage)
	}

	manifest, err := scaffold.LoadManifest(c.String("manifest"))
	if err != nil {
		return err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(c.Context,
		awsconfig.WithRegion(c.String("region")))
	if err != nil {
		return fmt.Errorf("load AWS config: %w", err)
	}

	return registry.New(awsCfg).Register(c.Context, stage, manifest)
}
