package user

import (
	"database/sql"

	"github.com/go-sql-driver/mysql"
)

const duplicateEntryCode = 1062

type UserRepoSQL struct {
	db *sql.DB
}

func NewUserRepoSQL(db *sql.DB) *UserRepoSQL {
	return &UserRepoSQL{db: db}
}

func (repo *UserRepoSQL) GetByID(id int64) (*User, error) {
	query := "SELECT `id`, `email`, `username`, `created_at` FROM users WHERE id = ?"
	r := repo.db.QueryRow(query, id)

	u := User{}
	err := r.Scan(&u.ID, &u.Email, &u.Username, &u.Created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &u, nil
}

func (repo *UserRepoSQL) GetByEmail(email string) (*User, error) {
	query := "SELECT `id`, `email`, `username`, `created_at` FROM users WHERE email = ?"
	r := repo.db.QueryRow(query, NormalizeEmail(email))

	u := User{}
	err := r.Scan(&u.ID, &u.Email, &u.Username, &u.Created)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// Add creates the row lazily on first verified sign-in. A concurrent
// retry for the same identity loses on the unique email key and gets
// ErrEmailTaken instead of a second row.
func (repo *UserRepoSQL) Add(u *User) (int64, error) {
	query := "INSERT INTO users (`email`, `username`) VALUES (?, ?)"
	r, err := repo.db.Exec(query, NormalizeEmail(u.Email), u.Username)
	if err != nil {
		if me, ok := err.(*mysql.MySQLError); ok && me.Number == duplicateEntryCode {
			return 0, ErrEmailTaken
		}

		return 0, err
	}

	lastID, err := r.LastInsertId()
	if err != nil {
		return 0, err
	}

	return lastID, nil
}
