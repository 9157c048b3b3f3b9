package user

import "errors"

var ErrEmployeeProfileRequired = errors.New("user is not linked to an employee profile")
