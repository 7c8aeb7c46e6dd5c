package export

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	_ "modernc.org/sqlite"

	"chamberpivot/internal/fileutil"
	"chamberpivot/internal/frame"
)

// SQLiteWriter writes the table into a fresh SQLite database. The index
// column becomes the primary key.
type SQLiteWriter struct {
	IndexColumn string
	Table       string
}

// Write implements Writer.
func (s SQLiteWriter) Write(path string, w *frame.Wide) error {
	table := s.Table
	if table == "" {
		table = "readings"
	}

	tmp, err := fileutil.TempPath(path)
	if err != nil {
		return err
	}
	if err := s.populate(tmp, table, w); err != nil {
		_ = removeQuiet(tmp)
		return err
	}
	return commitFile(tmp, path)
}

func (s SQLiteWriter) populate(dbPath, table string, w *frame.Wide) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer db.Close()

	defs := make([]string, 0, len(w.Columns)+1)
	defs = append(defs, fmt.Sprintf("%s TEXT PRIMARY KEY", quoteIdent(s.IndexColumn)))
	cols := make([]string, 0, len(w.Columns)+1)
	cols = append(cols, quoteIdent(s.IndexColumn))
	for j, name := range w.Columns {
		defs = append(defs, fmt.Sprintf("%s %s", quoteIdent(name), columnType(w, j)))
		cols = append(cols, quoteIdent(name))
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(defs, ", "))); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(cols)), ",")
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", quoteIdent(table), strings.Join(cols, ", "), placeholders))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < w.Len(); i++ {
		args := make([]any, 0, len(cols))
		args = append(args, w.Index[i].Format(TimestampLayout))
		for _, cell := range w.Row(i) {
			args = append(args, sqliteValue(cell))
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// columnType is REAL unless the column holds a text label.
func columnType(w *frame.Wide, j int) string {
	for i := 0; i < w.Len(); i++ {
		if w.Row(i)[j].IsText() {
			return "TEXT"
		}
	}
	return "REAL"
}

func sqliteValue(c frame.Cell) any {
	if v, ok := c.Float(); ok {
		return v
	}
	if c.IsMissing() {
		return nil
	}
	return c.String()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func removeQuiet(path string) error {
	err := os.Remove(path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
