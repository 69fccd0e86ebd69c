package postgres

import (
	"context"
	"fmt"
	"reflect"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// MockDB implements db.DBTX
type MockDB struct {
	ExecFunc     func(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	QueryFunc    func(ctx context.Context, sql string, arguments ...interface{}) (pgx.Rows, error)
	QueryRowFunc func(ctx context.Context, sql string, arguments ...interface{}) pgx.Row
}

func (m *MockDB) Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error) {
	if m.ExecFunc != nil {
		return m.ExecFunc(ctx, sql, arguments...)
	}
	return pgconn.CommandTag{}, nil
}

func (m *MockDB) Query(ctx context.Context, sql string, arguments ...interface{}) (pgx.Rows, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, sql, arguments...)
	}
	return &MockRows{}, nil
}

func (m *MockDB) QueryRow(ctx context.Context, sql string, arguments ...interface{}) pgx.Row {
	if m.QueryRowFunc != nil {
		return m.QueryRowFunc(ctx, sql, arguments...)
	}
	return nil
}

// MockRows replays Data row by row. Each value is assigned to the matching
// Scan destination by reflection.
type MockRows struct {
	Data    [][]any
	ScanErr error
	IterErr error

	pos    int
	closed bool
}

func (m *MockRows) Close()     { m.closed = true }
func (m *MockRows) Err() error { return m.IterErr }

func (m *MockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (m *MockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (m *MockRows) Next() bool {
	if m.closed || m.pos >= len(m.Data) {
		return false
	}
	m.pos++
	return true
}

func (m *MockRows) Scan(dest ...interface{}) error {
	if m.ScanErr != nil {
		return m.ScanErr
	}
	row := m.Data[m.pos-1]
	if len(row) != len(dest) {
		return fmt.Errorf("scan: row has %d values, got %d destinations", len(row), len(dest))
	}
	for i, v := range row {
		target := reflect.ValueOf(dest[i])
		if target.Kind() != reflect.Pointer || target.IsNil() {
			return fmt.Errorf("scan: destination %d is not a pointer", i)
		}
		value := reflect.ValueOf(v)
		if !value.Type().AssignableTo(target.Elem().Type()) {
			return fmt.Errorf("scan: cannot assign %T to %s", v, target.Elem().Type())
		}
		target.Elem().Set(value)
	}
	return nil
}

func (m *MockRows) Values() ([]any, error) { return m.Data[m.pos-1], nil }
func (m *MockRows) RawValues() [][]byte    { return nil }

func (m *MockRows) Conn() *pgx.Conn { return nil }
