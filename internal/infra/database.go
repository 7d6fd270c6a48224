package infra

import (
	"fmt"

	"github.com/AdriellysonCT/NinjaRestaurante-sub001/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection, runs AutoMigrate to create /
// update all tables, then applies the idempotent SQL patches that GORM cannot
// express (partial unique indexes, supporting indexes on hot queries).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		// Needed so the partial-unique-index violation surfaces as
		// gorm.ErrDuplicatedKey instead of a raw pgconn error.
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}

	return db, nil
}

// RunMigrations applies AutoMigrate plus the schema patches. Also used by the
// integration tests against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Usuario{},
		&model.Restaurante{},
		&model.Carteira{},
		&model.MovimentacaoCarteira{},
		&model.Pedido{},
		&model.SessaoCaixa{},
		&model.MovimentacaoCaixa{},
		&model.Fechamento{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot express.
// Each statement uses IF NOT EXISTS semantics so re-running is safe.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// One open drawer session per operator. This partial unique index is
		// the store-level backstop for the check-then-insert race in
		// CaixaService.Abrir: the second concurrent INSERT fails with a
		// duplicate-key error regardless of what the pre-check saw.
		{"partial unique index: one open session per operator", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'uni_caixa_sessoes_operador_aberta') THEN
    CREATE UNIQUE INDEX uni_caixa_sessoes_operador_aberta
        ON caixa_sessoes (operador_id)
        WHERE status = 'aberta';
  END IF;
END $$`},
		// Settlement aggregation scans confirmed order income by wallet+time.
		{"index: wallet entries by carteira/created_at", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_mov_carteira_entradas') THEN
    CREATE INDEX idx_mov_carteira_entradas
        ON movimentacoes_carteira (carteira_id, created_at)
        WHERE tipo = 'entrada' AND origem = 'pedido' AND status = 'confirmado';
  END IF;
END $$`},
		// FindUltimo orders by data_fim per restaurant on every submission.
		{"index: fechamentos by restaurante/data_fim", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_fechamentos_restaurante_data_fim') THEN
    CREATE INDEX idx_fechamentos_restaurante_data_fim
        ON fechamentos (restaurante_id, data_fim DESC);
  END IF;
END $$`},
		// The reminder cron scans old pending requests.
		{"partial index: pending fechamentos by created_at", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_fechamentos_pendentes') THEN
    CREATE INDEX idx_fechamentos_pendentes
        ON fechamentos (created_at)
        WHERE status = 'pendente';
  END IF;
END $$`},
		// The in-progress-orders precondition counts open orders per restaurant.
		{"partial index: pedidos em andamento", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_pedidos_em_andamento') THEN
    CREATE INDEX idx_pedidos_em_andamento
        ON pedidos (restaurante_id)
        WHERE status IN ('pendente', 'preparando', 'pronto');
  END IF;
END $$`},
	}

	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("schema patch %q: %w", p.descr, err)
		}
	}
	return nil
}
