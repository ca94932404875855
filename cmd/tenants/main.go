package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/kabisoft/kabipos-backend/internal/tenants"
	"github.com/kabisoft/kabipos-backend/pkg/config"
	"github.com/kabisoft/kabipos-backend/pkg/db"
	"github.com/kabisoft/kabipos-backend/pkg/logger"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "tenants"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "show", "tenant command: create|activate|deactivate|show")
	code := flag.String("code", "", "tenant code")
	name := flag.String("name", "", "tenant name (for create)")
	email := flag.String("email", "", "login email (for create)")
	password := flag.String("password", "", "initial password (for create; generated when empty)")
	phone := flag.String("phone", "", "phone (optional)")
	address := flag.String("address", "", "address (optional)")
	taxOffice := flag.String("tax-office", "", "tax office (optional)")
	taxNumber := flag.String("tax-number", "", "tax number (optional)")
	flag.Parse()

	if strings.TrimSpace(*code) == "" {
		fmt.Fprintln(os.Stderr, "missing -code")
		os.Exit(1)
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "tenants",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx = logg.WithFields(ctx, map[string]any{"env": cfg.App.Env, "cmd": *cmd})
	ctx = logg.WithTenantCode(ctx, *code)

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	svc, err := tenants.NewService(tenants.NewRepository(dbClient.DB(), cfg.Password))
	requireResource(ctx, logg, "tenant service", err)

	var (
		tenant *tenants.TenantDTO
		temp   string
	)
	switch *cmd {
	case "create":
		result, err := svc.Provision(ctx, tenants.ProvisionInput{
			Code:      *code,
			Name:      *name,
			Email:     *email,
			Password:  *password,
			Phone:     optional(*phone),
			Address:   optional(*address),
			TaxOffice: optional(*taxOffice),
			TaxNumber: optional(*taxNumber),
		})
		fail(ctx, logg, "create", err)
		tenant, temp = result.Tenant, result.TempPassword
		logg.Info(ctx, "tenant.provisioned")

	case "activate", "deactivate":
		tenant, err = svc.SetActive(ctx, *code, *cmd == "activate")
		fail(ctx, logg, *cmd, err)
		logg.Info(ctx, "tenant."+*cmd+"d")

	case "show":
		tenant, err = svc.GetByCode(ctx, *code)
		fail(ctx, logg, "show", err)

	default:
		fmt.Fprintln(os.Stderr, "unknown -cmd value:", *cmd)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(tenant, "", "  ")
	fail(ctx, logg, "encode", err)
	fmt.Println(string(out))
	if temp != "" {
		fmt.Println("temporary password (shown once):", temp)
	}
}

func optional(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func fail(ctx context.Context, logg *logger.Logger, op string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "tenant "+op+" failed", err)
	fmt.Fprintf(os.Stderr, "%s failed: %v\n", op, err)
	os.Exit(1)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
