package main

import (
	"fmt"
	"os"

	"github.com/goodjin723/AI-API-Usage-CLI/internal/adapter/driven/config"
	"github.com/goodjin723/AI-API-Usage-CLI/internal/adapter/driven/export"
	"github.com/goodjin723/AI-API-Usage-CLI/internal/adapter/driven/fal"
	"github.com/goodjin723/AI-API-Usage-CLI/internal/adapter/driven/notion"
	"github.com/goodjin723/AI-API-Usage-CLI/internal/adapter/driven/openai"
	"github.com/goodjin723/AI-API-Usage-CLI/internal/adapter/driving/cli"
	"github.com/goodjin723/AI-API-Usage-CLI/internal/application/usecase"
	"github.com/goodjin723/AI-API-Usage-CLI/internal/domain/repository"
	"github.com/goodjin723/AI-API-Usage-CLI/pkg/console"
	"github.com/goodjin723/AI-API-Usage-CLI/pkg/version"
)

func main() {
	app := cli.NewCLIApp(version.Version)

	configRepo := config.NewConfigRepository()
	exportRepo := export.NewExportRepository()
	consoleImpl := console.NewConsole()

	usageUseCase := usecase.NewUsageUseCase(
		configRepo,
		exportRepo,
		consoleImpl,
		fal.NewFalRepository,
		func(apiKey string) repository.RecordStore {
			return notion.NewNotionRepository(apiKey)
		},
	)

	invoiceUseCase := usecase.NewInvoiceUseCase(
		configRepo,
		consoleImpl,
		openai.NewInvoiceRepository,
		func(apiKey string) repository.InvoiceStore {
			return notion.NewNotionRepository(apiKey)
		},
	)

	app.SetUsageUseCase(usageUseCase)
	app.SetInvoiceUseCase(invoiceUseCase)

	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
