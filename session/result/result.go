package result

import "errors"

var (
	ErrLastInsertIdUnsupported = errors.New("LastInsertId is not supported by this query")
	ErrRowsAffectedUnsupported = errors.New("RowsAffected is not supported by INSERT ... RETURNING")
)

func NewResult(lastInsertId, rowsAffected int64) Result {
	return Result{lastInsertId, rowsAffected}
}

type Result struct {
	lastInsertId int64
	rowsAffected int64
}

func (r Result) LastInsertId() (int64, error) {
	if r.rowsAffected == 0 {
		return r.lastInsertId, nil
	}
	return 0, ErrLastInsertIdUnsupported
}

func (r Result) RowsAffected() (int64, error) {
	if r.lastInsertId == 0 {
		return r.rowsAffected, nil
	}
	return 0, ErrRowsAffectedUnsupported
}
