package user

import (
	"database/sql"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
)

var u = &User{
	ID:       25,
	Email:    "elena@example.com",
	Username: "book_lover",
	Created:  time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
}

type getByFieldTestCase struct {
	getBy func(*UserRepoSQL, interface{}) (*User, error)
	param interface{}
}

var cases = []getByFieldTestCase{
	{
		getBy: func(r *UserRepoSQL, id interface{}) (*User, error) {
			return r.GetByID(id.(int64))
		},
		param: u.ID,
	},
	{
		getBy: func(r *UserRepoSQL, email interface{}) (*User, error) {
			return r.GetByEmail(email.(string))
		},
		param: u.Email,
	},
}

func TestGetBy(t *testing.T) {
	for _, tc := range cases {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
		}

		defer db.Close()

		repo := NewUserRepoSQL(db)

		rows := sqlmock.NewRows([]string{"id", "email", "username", "created_at"}).
			AddRow(u.ID, u.Email, u.Username, u.Created)

		mock.
			ExpectQuery("SELECT `id`, `email`, `username`, `created_at` FROM users WHERE").
			WithArgs(tc.param).
			WillReturnRows(rows)

		res, err := tc.getBy(repo, tc.param)
		if err != nil {
			t.Fatalf("unexpected error: %v", err.Error())
		}

		if !reflect.DeepEqual(u, res) {
			t.Fatalf("expected %v, but was %v", u, res)
		}

		// error
		mock.
			ExpectQuery("SELECT `id`, `email`, `username`, `created_at` FROM users WHERE").
			WithArgs(tc.param).
			WillReturnError(errors.New("db_error"))

		res, err = tc.getBy(repo, tc.param)

		if res != nil {
			t.Fatalf("unexpected result: %v", res)
		}

		if err == nil {
			t.Fatalf("expected error but was nil")
		}

		// no rows
		mock.
			ExpectQuery("SELECT `id`, `email`, `username`, `created_at` FROM users WHERE").
			WithArgs(tc.param).
			WillReturnError(sql.ErrNoRows)

		res, err = tc.getBy(repo, tc.param)

		if res != nil || err != nil {
			t.Fatalf("wrong result, expected both nil but was %v, %v", res, err)
		}
	}
}

func TestGetByEmailNormalizes(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserRepoSQL(db)

	rows := sqlmock.NewRows([]string{"id", "email", "username", "created_at"}).
		AddRow(u.ID, u.Email, u.Username, u.Created)

	mock.
		ExpectQuery("SELECT `id`, `email`, `username`, `created_at` FROM users WHERE").
		WithArgs("elena@example.com").
		WillReturnRows(rows)

	if _, err := repo.GetByEmail("  Elena@Example.COM "); err != nil {
		t.Fatalf("unexpected error: %v", err.Error())
	}
}

func TestAdd(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserRepoSQL(db)
	mock.
		ExpectExec("INSERT INTO users").
		WithArgs(u.Email, u.Username).
		WillReturnResult(sqlmock.NewResult(u.ID, 1))

	id, err := repo.Add(u)
	if err != nil {
		t.Fatalf("unexpected error while adding user: %v", err.Error())
	}
	if id != u.ID {
		t.Fatalf("expected %v but was %v", u.ID, id)
	}

	// error
	mock.
		ExpectExec("INSERT INTO users").
		WithArgs(u.Email, u.Username).
		WillReturnError(errors.New("db_error"))

	if _, err = repo.Add(u); err == nil {
		t.Fatal("expected error but was nil")
	}
}

// Two verifications racing on the same identity must end with exactly
// one row; the loser sees ErrEmailTaken and re-reads.
func TestAddDuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewUserRepoSQL(db)
	mock.
		ExpectExec("INSERT INTO users").
		WithArgs(u.Email, u.Username).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})

	if _, err := repo.Add(u); err != ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken but was %v", err)
	}
}
