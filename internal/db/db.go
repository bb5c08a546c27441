package db

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"entra-guide-rag/internal/config"
)

// QueryLog is one logged conversation turn.
type QueryLog struct {
	bun.BaseModel `bun:"table:logs,alias:l"`
	ID            int64     `bun:"id,pk,autoincrement"`
	Question      string    `bun:"question,notnull"`
	Answer        string    `bun:"answer,notnull"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// QuestionCount is one row of the frequent-questions report.
type QuestionCount struct {
	Question string `bun:"question"`
	Count    int    `bun:"cnt"`
}

func ConnectDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	opts := []pgdriver.Option{pgdriver.WithDSN(cfg.DSN)}
	if cfg.Password != "" {
		opts = append(opts, pgdriver.WithPassword(cfg.Password))
	}
	return sql.OpenDB(pgdriver.NewConnector(opts...)), nil
}

func NewDB(sqldb *sql.DB, debug bool) *bun.DB {
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return db
}

// InitDB creates the logs table if it does not exist yet.
func InitDB(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*QueryLog)(nil)).IfNotExists().Exec(ctx)
	return err
}

// InsertLog appends one question/answer pair.
func InsertLog(ctx context.Context, db *bun.DB, question, answer string) error {
	entry := &QueryLog{
		Question: question,
		Answer:   answer,
	}
	_, err := db.NewInsert().Model(entry).Exec(ctx)
	return err
}

// RecentLogs returns the newest entries first.
func RecentLogs(ctx context.Context, db *bun.DB, limit int) ([]QueryLog, error) {
	var logs []QueryLog
	err := db.NewSelect().
		Model(&logs).
		Column("question", "answer", "created_at").
		OrderExpr("created_at DESC").
		Limit(limit).
		Scan(ctx)
	return logs, err
}

// TopQuestions returns the most frequently asked questions, descending.
func TopQuestions(ctx context.Context, db *bun.DB, limit int) ([]QuestionCount, error) {
	var counts []QuestionCount
	err := db.NewSelect().
		Model((*QueryLog)(nil)).
		ColumnExpr("question").
		ColumnExpr("COUNT(*) AS cnt").
		GroupExpr("question").
		OrderExpr("cnt DESC").
		Limit(limit).
		Scan(ctx, &counts)
	return counts, err
}
