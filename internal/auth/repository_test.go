package auth

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestIsDuplicateEntry(t *testing.T) {
	dup := &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'alice' for key 'uq_users_username'"}
	if !isDuplicateEntry(dup) {
		t.Error("expected 1062 to be recognized as a duplicate entry")
	}
	if !isDuplicateEntry(fmt.Errorf("inserting user: %w", dup)) {
		t.Error("expected wrapped 1062 to be recognized")
	}

	if isDuplicateEntry(&mysql.MySQLError{Number: 1213, Message: "Deadlock found"}) {
		t.Error("other MySQL errors are not duplicates")
	}
	if isDuplicateEntry(errors.New("connection refused")) {
		t.Error("non-MySQL errors are not duplicates")
	}
	if isDuplicateEntry(nil) {
		t.Error("nil is not a duplicate")
	}
}
