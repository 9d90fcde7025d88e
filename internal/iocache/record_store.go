package iocache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/kpiboard/internal/contract"
	"github.com/huangsam/kpiboard/schema"
)

// Table names for the record store.
const (
	operatorsTable       = "kpi_operators"
	templatesTable       = "kpi_templates"
	performanceDataTable = "kpi_performance_data"
	historyTable         = "kpi_performance_history"
)

// recordTables lists the record store tables in creation order.
var recordTables = []string{operatorsTable, templatesTable, performanceDataTable, historyTable}

// ErrOperatorNotFound is returned when a person is not on the roster.
var ErrOperatorNotFound = errors.New("operator not found")

// ErrIndicatorNotFound is returned when a mode change names an unknown indicator.
var ErrIndicatorNotFound = errors.New("indicator not found in template")

// RecordStoreImpl implements the RecordStore interface on SQL backends.
type RecordStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	now     func() time.Time
}

var _ contract.RecordStore = &RecordStoreImpl{} // Compile-time check

// NewRecordStore opens the record store and brings its schema to the latest version.
func NewRecordStore(backend schema.DatabaseBackend, connStr string) (contract.RecordStore, error) {
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled persistence
		return &RecordStoreImpl{backend: backend, now: time.Now}, nil
	}

	if _, err := ApplyMigrations(backend, connStr, -1); err != nil {
		return nil, fmt.Errorf("failed to prepare record tables: %w", err)
	}

	db, err := openDB(backend, connStr, contract.GetStoreDBFilePath())
	if err != nil {
		return nil, err
	}
	return &RecordStoreImpl{
		db:      db,
		backend: backend,
		now:     time.Now,
	}, nil
}

func (rs *RecordStoreImpl) disabled() bool {
	return rs.backend == schema.NoneBackend || rs.db == nil
}

func (rs *RecordStoreImpl) q(query string) string {
	return rebind(rs.backend, query)
}

// ListOperators returns the roster ordered by name.
func (rs *RecordStoreImpl) ListOperators(ctx context.Context) ([]schema.Operator, error) {
	if rs.disabled() {
		return []schema.Operator{}, nil
	}
	rows, err := rs.db.QueryContext(ctx, `SELECT operator_name, group_name, store_count, avg_score, total_salary
		FROM kpi_operators ORDER BY operator_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query operators: %w", err)
	}
	defer func() { _ = rows.Close() }()

	operators := []schema.Operator{}
	for rows.Next() {
		var op schema.Operator
		if err := rows.Scan(&op.OperatorName, &op.GroupName, &op.StoreCount, &op.AvgScore, &op.TotalSalary); err != nil {
			return nil, fmt.Errorf("failed to scan operator: %w", err)
		}
		operators = append(operators, op)
	}
	return operators, rows.Err()
}

// GetOperator returns a single roster entry.
func (rs *RecordStoreImpl) GetOperator(ctx context.Context, person string) (schema.Operator, error) {
	if rs.disabled() {
		return schema.Operator{}, fmt.Errorf("%w: %s", ErrOperatorNotFound, person)
	}
	var op schema.Operator
	row := rs.db.QueryRowContext(ctx, rs.q(`SELECT operator_name, group_name, store_count, avg_score, total_salary
		FROM kpi_operators WHERE operator_name = ?`), person)
	if err := row.Scan(&op.OperatorName, &op.GroupName, &op.StoreCount, &op.AvgScore, &op.TotalSalary); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return op, fmt.Errorf("%w: %s", ErrOperatorNotFound, person)
		}
		return op, fmt.Errorf("failed to query operator: %w", err)
	}
	return op, nil
}

// GetTemplate returns the operator's KPI template in display order.
func (rs *RecordStoreImpl) GetTemplate(ctx context.Context, person string) ([]schema.KpiTemplateItem, error) {
	if rs.disabled() {
		return []schema.KpiTemplateItem{}, nil
	}
	rows, err := rs.db.QueryContext(ctx, rs.q(`SELECT item_id, indicator, COALESCE(kpi, ''), category, weight,
		COALESCE(formula, ''), editable_field_key, is_auto_calculated
		FROM kpi_templates WHERE person_name = ? ORDER BY sort_order, item_id`), person)
	if err != nil {
		return nil, fmt.Errorf("failed to query template: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []schema.KpiTemplateItem{}
	for rows.Next() {
		var item schema.KpiTemplateItem
		var id string
		var auto int
		if err := rows.Scan(&id, &item.Indicator, &item.Kpi, &item.Category, &item.Weight,
			&item.Formula, &item.EditableFieldKey, &auto); err != nil {
			return nil, fmt.Errorf("failed to scan template item: %w", err)
		}
		item.ID = schema.ItemID(id)
		item.IsAutoCalculated = auto != 0
		items = append(items, item)
	}
	return items, rows.Err()
}

// GetRawInputs returns the values entered for a month as strings.
func (rs *RecordStoreImpl) GetRawInputs(ctx context.Context, person, month string) (schema.RawInputs, error) {
	raw := schema.RawInputs{}
	if rs.disabled() {
		return raw, nil
	}
	rows, err := rs.db.QueryContext(ctx, rs.q(`SELECT field_key, COALESCE(field_value, '')
		FROM kpi_performance_data WHERE person_name = ? AND performance_month = ?`), person, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query performance data: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan performance data: %w", err)
		}
		raw[key] = value
	}
	return raw, rows.Err()
}

// GetHistory returns every saved month for the operator.
func (rs *RecordStoreImpl) GetHistory(ctx context.Context, person string) ([]schema.HistoryRecord, error) {
	if rs.disabled() {
		return []schema.HistoryRecord{}, nil
	}
	return rs.queryHistory(ctx, rs.q(`SELECT person_name, performance_month, total_score, final_score, egp_score,
		COALESCE(scores, ''), saved_at FROM kpi_performance_history WHERE person_name = ?
		ORDER BY performance_month DESC`), person)
}

// GetAllHistory returns the history of every operator.
func (rs *RecordStoreImpl) GetAllHistory(ctx context.Context) ([]schema.HistoryRecord, error) {
	if rs.disabled() {
		return []schema.HistoryRecord{}, nil
	}
	return rs.queryHistory(ctx, `SELECT person_name, performance_month, total_score, final_score, egp_score,
		COALESCE(scores, ''), saved_at FROM kpi_performance_history
		ORDER BY person_name, performance_month DESC`)
}

func (rs *RecordStoreImpl) queryHistory(ctx context.Context, query string, args ...any) ([]schema.HistoryRecord, error) {
	rows, err := rs.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	records := []schema.HistoryRecord{}
	for rows.Next() {
		var r schema.HistoryRecord
		if err := rows.Scan(&r.PersonName, &r.PerformanceMonth, &r.TotalScore, &r.FinalScore,
			&r.EgpScore, &r.Scores, &r.SavedAt); err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// SetAutoCalculate updates the mode flag of every template row of the
// operator carrying the indicator label.
func (rs *RecordStoreImpl) SetAutoCalculate(ctx context.Context, person, indicator string, auto bool) error {
	if rs.disabled() {
		return nil
	}
	var count int
	if err := rs.db.QueryRowContext(ctx, rs.q(`SELECT COUNT(*) FROM kpi_templates WHERE person_name = ? AND indicator = ?`),
		person, indicator).Scan(&count); err != nil {
		return fmt.Errorf("failed to look up indicator: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%w: %q for %s", ErrIndicatorNotFound, indicator, person)
	}

	flag := 0
	if auto {
		flag = 1
	}
	if _, err := rs.db.ExecContext(ctx, rs.q(`UPDATE kpi_templates SET is_auto_calculated = ? WHERE person_name = ? AND indicator = ?`),
		flag, person, indicator); err != nil {
		return fmt.Errorf("failed to update indicator mode: %w", err)
	}
	return nil
}

// SaveRecord writes the raw inputs and the history row of one month in a single transaction.
func (rs *RecordStoreImpl) SaveRecord(ctx context.Context, payload schema.SavePayload) error {
	if rs.disabled() {
		return nil
	}
	if payload.PersonName == "" || payload.PerformanceMonth == "" {
		return errors.New("person and month are required to save a record")
	}

	scores, err := json.Marshal(payload.Scores)
	if err != nil {
		return fmt.Errorf("failed to encode scores: %w", err)
	}

	tx, err := rs.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	dataQuery := rs.upsertQuery(performanceDataTable,
		[]string{"person_name", "performance_month", "field_key", "field_value"},
		[]string{"person_name", "performance_month", "field_key"})
	stmt, err := tx.PrepareContext(ctx, dataQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare performance data upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, k := range slices.Sorted(maps.Keys(payload.Inputs)) {
		if _, reserved := schema.ReservedInputKeys[k]; reserved || payload.Inputs[k] == nil {
			continue
		}
		if _, err := stmt.ExecContext(ctx, payload.PersonName, payload.PerformanceMonth, k, payload.Inputs.String(k)); err != nil {
			return fmt.Errorf("failed to save field %s: %w", k, err)
		}
	}

	historyQuery := rs.upsertQuery(historyTable,
		[]string{"person_name", "performance_month", "total_score", "final_score", "egp_score", "scores", "saved_at"},
		[]string{"person_name", "performance_month"})
	if _, err := tx.ExecContext(ctx, historyQuery, payload.PersonName, payload.PerformanceMonth,
		payload.TotalScore, payload.FinalScore, payload.Coefficient, string(scores), rs.now().Unix()); err != nil {
		return fmt.Errorf("failed to save history: %w", err)
	}

	return tx.Commit()
}

// ImportOperators upserts roster entries.
func (rs *RecordStoreImpl) ImportOperators(ctx context.Context, operators []schema.Operator) error {
	if rs.disabled() {
		return nil
	}
	tx, err := rs.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := rs.upsertQuery(operatorsTable,
		[]string{"operator_name", "group_name", "store_count", "avg_score", "total_salary", "updated_at"},
		[]string{"operator_name"})
	ts := rs.now().Unix()
	for _, op := range operators {
		if strings.TrimSpace(op.OperatorName) == "" {
			return errors.New("operator name cannot be empty")
		}
		if _, err := tx.ExecContext(ctx, query, op.OperatorName, op.GroupName, op.StoreCount, op.AvgScore, op.TotalSalary, ts); err != nil {
			return fmt.Errorf("failed to import operator %s: %w", op.OperatorName, err)
		}
	}
	return tx.Commit()
}

// ImportTemplate replaces the template of an operator.
func (rs *RecordStoreImpl) ImportTemplate(ctx context.Context, person string, items []schema.KpiTemplateItem) error {
	if rs.disabled() {
		return nil
	}
	tx, err := rs.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, rs.q(`DELETE FROM kpi_templates WHERE person_name = ?`), person); err != nil {
		return fmt.Errorf("failed to clear template of %s: %w", person, err)
	}

	insert := rs.q(`INSERT INTO kpi_templates (person_name, item_id, sort_order, indicator, kpi, category, weight,
		formula, editable_field_key, is_auto_calculated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for i, item := range items {
		if item.ID == "" {
			return fmt.Errorf("template item %d of %s has no id", i, person)
		}
		auto := 0
		if item.IsAutoCalculated {
			auto = 1
		}
		if _, err := tx.ExecContext(ctx, insert, person, string(item.ID), i, item.Indicator, item.Kpi, item.Category,
			item.Weight, item.Formula, item.EditableFieldKey, auto); err != nil {
			return fmt.Errorf("failed to import template item %s of %s: %w", item.ID, person, err)
		}
	}
	return tx.Commit()
}

// upsertQuery builds a backend-specific insert-or-update statement.
func (rs *RecordStoreImpl) upsertQuery(table string, columns, keys []string) string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	cols := strings.Join(columns, ", ")

	var updates []string
	for _, c := range columns {
		if slices.Contains(keys, c) {
			continue
		}
		switch rs.backend {
		case schema.MySQLBackend:
			updates = append(updates, fmt.Sprintf("%s = new.%s", c, c))
		case schema.PostgreSQLBackend, schema.SQLiteBackend:
			updates = append(updates, fmt.Sprintf("%s = excluded.%s", c, c))
		}
	}

	switch rs.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) AS new ON DUPLICATE KEY UPDATE %s",
			table, cols, marks, strings.Join(updates, ", "))
	default:
		return rs.q(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
			table, cols, marks, strings.Join(keys, ", "), strings.Join(updates, ", ")))
	}
}

// Close closes the underlying DB connection.
func (rs *RecordStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the record store.
func (rs *RecordStoreImpl) GetStatus(ctx context.Context) (schema.RecordStatus, error) {
	status := schema.RecordStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.disabled() {
		return status, nil
	}

	status.SchemaVersion = schemaVersion(rs.db)

	for _, table := range recordTables {
		var count int64
		if err := rs.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to count %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	status.Operators = int(status.TableSizes[operatorsTable])
	status.TemplateItems = int(status.TableSizes[templatesTable])
	status.HistoryRecords = int(status.TableSizes[historyTable])

	if status.HistoryRecords > 0 {
		var lastSaved int64
		if err := rs.db.QueryRowContext(ctx, "SELECT MAX(saved_at) FROM kpi_performance_history").Scan(&lastSaved); err != nil {
			return status, fmt.Errorf("failed to get last save time: %w", err)
		}
		status.LastSavedTime = time.Unix(lastSaved, 0)
	}
	return status, nil
}
