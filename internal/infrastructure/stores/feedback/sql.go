package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	_ "modernc.org/sqlite"

	"whatif-sim/internal/domain/models"
)

// 支持的 SQL 方言
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLStore 基于 database/sql 的反馈存储，SQLite 使用 modernc 驱动，PostgreSQL 使用 pgx
type SQLStore struct {
	db      *sql.DB
	dialect string
	table   string
}

// OpenSQLStore 打开数据库并建表
func OpenSQLStore(ctx context.Context, dialect, dsn, table string) (*SQLStore, error) {
	driver, err := driverFor(dialect)
	if err != nil {
		return nil, err
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// SQLite 单写者
		db.SetMaxOpenConns(1)
	}

	s := &SQLStore{db: db, dialect: dialect, table: table}
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func driverFor(dialect string) (string, error) {
	switch dialect {
	case DialectSQLite:
		return "sqlite", nil
	case DialectPostgres:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported sql dialect: %s", dialect)
	}
}

func (s *SQLStore) ensureSchema(ctx context.Context) error {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if s.dialect == DialectPostgres {
		idColumn = "id BIGSERIAL PRIMARY KEY"
	}

	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	%s,
	session_id TEXT NOT NULL,
	scenario TEXT NOT NULL,
	serious_rating INTEGER NOT NULL,
	fun_rating INTEGER NOT NULL,
	overall_satisfaction INTEGER NOT NULL,
	comments TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
)`, s.table, idColumn),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_%s_session ON %s (session_id)`, s.table, s.table),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Put 追加一条反馈
func (s *SQLStore) Put(ctx context.Context, sessionID string, feedback *models.UserFeedback) error {
	query := s.rebind(fmt.Sprintf(
		`INSERT INTO %s (session_id, scenario, serious_rating, fun_rating, overall_satisfaction, comments, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`, s.table))

	_, err := s.db.ExecContext(ctx, query,
		sessionID,
		feedback.Scenario,
		feedback.SeriousRating,
		feedback.FunRating,
		feedback.OverallSatisfaction,
		feedback.Comments,
		feedback.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	return nil
}

// GetAll 按写入顺序返回会话下的全部反馈
func (s *SQLStore) GetAll(ctx context.Context, sessionID string) ([]*models.UserFeedback, error) {
	query := s.rebind(fmt.Sprintf(
		`SELECT session_id, scenario, serious_rating, fun_rating, overall_satisfaction, comments, created_at
FROM %s WHERE session_id = ? ORDER BY id`, s.table))

	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}
	defer rows.Close()

	out := make([]*models.UserFeedback, 0)
	for rows.Next() {
		var (
			fb        models.UserFeedback
			createdAt string
		)
		if err := rows.Scan(&fb.SessionID, &fb.Scenario, &fb.SeriousRating, &fb.FunRating,
			&fb.OverallSatisfaction, &fb.Comments, &createdAt); err != nil {
			return nil, fmt.Errorf("scan feedback: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			fb.Timestamp = ts
		}
		out = append(out, &fb)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback: %w", err)
	}
	return out, nil
}

// Close 关闭数据库连接
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind 将 ? 占位符转换为 PostgreSQL 的 $n
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
