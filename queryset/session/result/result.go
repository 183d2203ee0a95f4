package result

import "errors"

func NewResult(lastInsertID, rowsAffected int64) ResultImp {
	return ResultImp{lastInsertID, rowsAffected}
}

type ResultImp struct {
	lastInsertID int64
	rowsAffected int64
}

func (r ResultImp) LastInsertId() (int64, error) {
	if r.rowsAffected == 0 {
		return r.lastInsertID, nil
	}
	return 0, errors.New("LastInsertId is not supported by this driver")
}

func (r ResultImp) RowsAffected() (int64, error) {
	if r.lastInsertID == 0 {
		return r.rowsAffected, nil
	}
	return 0, errors.New("RowsAffected is not supported by INSERT command")
}
