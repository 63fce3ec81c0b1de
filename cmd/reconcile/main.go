// reconcile recalcula el inventario de una finca desde sus eventos y corrige la deriva
// (estados que quedaron desalineados tras una eliminación interrumpida).
//
// Uso: go run ./cmd/reconcile -farm-id <finca> [-material-id m1,m2] [-continue-on-error]
// Sin -material-id recorre todos los insumos con estado o eventos en la finca.
// Sale con código 1 si algún insumo falla, salvo con -continue-on-error.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/jhoicas/agro-ledger/internal/app"
	"github.com/jhoicas/agro-ledger/internal/application/ledger"
	"github.com/jhoicas/agro-ledger/internal/domain"
	"github.com/jhoicas/agro-ledger/pkg/config"
	"github.com/jhoicas/agro-ledger/pkg/logger"
)

const systemUser = "system:reconcile"

func main() {
	farmID := flag.String("farm-id", "", "finca a reconciliar (obligatorio)")
	materials := flag.String("material-id", "", "insumos separados por coma; vacío = todos")
	continueOnError := flag.Bool("continue-on-error", false, "salir con 0 aunque falle algún insumo")
	flag.Parse()

	if strings.TrimSpace(*farmID) == "" {
		fmt.Fprintln(os.Stderr, "-farm-id es obligatorio")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("reconcile")
	if cfg.Ledger.Store == config.StoreMemory {
		log.Warn().Msg("LEDGER_STORE=memory: no hay datos persistidos que reconciliar")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar dependencias")
	}
	defer container.Close()

	actor := ledger.Actor{UserID: systemUser, UserAgent: "agro-ledger/reconcile"}
	report, err := container.Inventory.Reconcile(ctx, actor, strings.TrimSpace(*farmID), parseMaterialIDs(*materials))
	if err != nil {
		log.Error().Err(err).Msg("reconciliación abortada")
		container.Close()
		os.Exit(1)
	}

	writeReport(os.Stdout, report)

	failed := len(report.Failed())
	log.Info().
		Str("farm_id", report.FarmID).
		Int("materials", len(report.Outcomes)).
		Int("failed", failed).
		Msg("reconciliación terminada")
	if failed > 0 && !*continueOnError {
		container.Close()
		os.Exit(1)
	}
}

// parseMaterialIDs separa por coma, recorta y descarta vacíos y repetidos.
func parseMaterialIDs(s string) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		id := strings.TrimSpace(part)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

// writeReport una fila por insumo con su resultado.
func writeReport(w io.Writer, report ledger.RecomputeReport) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INSUMO\tRESULTADO\tSISTEMA\tREAL\tPROMEDIO\tVALOR")
	for _, o := range report.Outcomes {
		fmt.Fprintln(tw, outcomeLine(o))
	}
	_ = tw.Flush()
}

func outcomeLine(o ledger.MaterialOutcome) string {
	switch {
	case o.Err != nil:
		status := "ERROR"
		if domain.IsRetryable(o.Err) {
			status = "ERROR (reintentar)"
		}
		return fmt.Sprintf("%s\t%s: %v\t-\t-\t-\t-", o.MaterialID, status, o.Err)
	case o.NotInitialized:
		return fmt.Sprintf("%s\tsin eventos\t-\t-\t-\t-", o.MaterialID)
	}
	status := "sin cambios"
	if o.Drift {
		status = "deriva corregida"
	} else if o.Changed {
		status = "actualizado"
	}
	st := o.State
	return fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s", o.MaterialID, status,
		st.SystemQuantity.String(), st.RealQuantity.String(),
		st.AveragePrice.StringFixed(4), st.StockValue.StringFixed(2))
}
