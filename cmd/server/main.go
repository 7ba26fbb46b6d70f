package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/entregas-next/internal/app"
	"github.com/entregas-next/internal/config"
	"github.com/entregas-next/internal/logger"
	"github.com/entregas-next/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiBold  = "\033[1m"
	ansiDim   = "\033[2m"
	ansiGreen = "\033[32m"
	ansiCyan  = "\033[36m"
)

func main() {
	printStartupBanner()

	// Cargar configuración
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if cfg.Server.Mode == "release" {
		if isWeakSecret(cfg.Session.JWTSecret) {
			stdLog.Fatalf("El secreto JWT es débil o sigue con el valor por defecto; configura una clave aleatoria fuerte en producción")
		}
	} else if isWeakSecret(cfg.Session.JWTSecret) {
		stdLog.Printf("Advertencia: el secreto JWT es débil o sigue con el valor por defecto")
	}

	// Inicializar la base de datos
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Fallo al inicializar la base de datos: %v", err)
	}

	// Migrar tablas
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Fallo al migrar la base de datos: %v", err)
	}

	// Modo de Gin
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Argumentos de línea de comandos
	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "modo de arranque: all (por defecto), api, worker")
	flag.Parse()

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("Fallo al ejecutar el servicio: %v", err)
	}
}

func printStartupBanner() {
	fmt.Println(ansiCyan + "███████╗███╗   ██╗████████╗██████╗ ███████╗ ██████╗  █████╗ ███████╗" + ansiReset)
	fmt.Println(ansiCyan + "██╔════╝████╗  ██║╚══██╔══╝██╔══██╗██╔════╝██╔════╝ ██╔══██╗██╔════╝" + ansiReset)
	fmt.Println(ansiCyan + "█████╗  ██╔██╗ ██║   ██║   ██████╔╝█████╗  ██║  ███╗███████║███████╗" + ansiReset)
	fmt.Println(ansiCyan + "██╔══╝  ██║╚██╗██║   ██║   ██╔══██╗██╔══╝  ██║   ██║██╔══██║╚════██║" + ansiReset)
	fmt.Println(ansiCyan + "███████╗██║ ╚████║   ██║   ██║  ██║███████╗╚██████╔╝██║  ██║███████║" + ansiReset)
	fmt.Println(ansiCyan + "╚══════╝╚═╝  ╚═══╝   ╚═╝   ╚═╝  ╚═╝╚══════╝ ╚═════╝ ╚═╝  ╚═╝╚══════╝" + ansiReset)
	fmt.Println(ansiGreen + ansiBold + "Entregas-Next · Portal del regente" + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	if strings.Contains(normalized, "change-me") ||
		strings.Contains(normalized, "change-in-production") ||
		strings.Contains(normalized, "your-secret-key") {
		return true
	}
	return false
}
