package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

const maxChainDepth = 8

// DBError is the driver-level detail behind a failed query.
type DBError struct {
	Driver     string `json:"driver"`
	Code       string `json:"code,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"message,omitempty"`
}

// ErrorDump flattens an error for structured logs.
type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`
	DB         *DBError `json:"db,omitempty"`
}

// Dump walks err's chain (at most eight links) and extracts the typed code
// and any Postgres or sqlite driver error.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}
	d := ErrorDump{TopMessage: err.Error(), DB: dbError(err)}
	if typed := As(err); typed != nil {
		d.Code = typed.Code()
	}
	for e, depth := err, 0; e != nil && depth < maxChainDepth; e, depth = errors.Unwrap(e), depth+1 {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}
	return d
}

// Fields renders the dump as log fields.
func (d ErrorDump) Fields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_code":  d.Code,
		"error_chain": d.Chain,
	}
	if d.DB != nil {
		fields["db_driver"] = d.DB.Driver
		fields["db_code"] = d.DB.Code
		fields["db_message"] = d.DB.Message
		if d.DB.Constraint != "" {
			fields["db_constraint"] = d.DB.Constraint
		}
		if d.DB.Table != "" {
			fields["db_table"] = d.DB.Table
		}
		if d.DB.Detail != "" {
			fields["db_detail"] = d.DB.Detail
		}
	}
	return fields
}

func dbError(err error) *DBError {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &DBError{
			Driver:     "pgx",
			Code:       pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &DBError{
			Driver:     "pq",
			Code:       string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return &DBError{
			Driver:  "sqlite3",
			Code:    fmt.Sprintf("%d/%d", int(liteErr.Code), int(liteErr.ExtendedCode)),
			Message: liteErr.Error(),
		}
	}
	return nil
}
