package store

import (
	"testing"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/stretchr/testify/require"

	"clipstream/pkg/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Video{}).Error)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRegister(t *testing.T) {
	db := testDB(t)
	accounts := NewAccounts(db)

	user, err := accounts.Register("a@x.com", "p")
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	require.Equal(t, "a@x.com", user.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := testDB(t)
	accounts := NewAccounts(db)

	_, err := accounts.Register("a@x.com", "p")
	require.NoError(t, err)

	_, err = accounts.Register("a@x.com", "other")
	require.ErrorIs(t, err, ErrConflict)

	var count int
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Equal(t, 1, count)
}

func TestRegisterMissingFields(t *testing.T) {
	db := testDB(t)
	accounts := NewAccounts(db)

	cases := []struct {
		name, email, password string
	}{
		{name: "missing email", email: "", password: "p"},
		{name: "missing password", email: "a@x.com", password: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := accounts.Register(tc.email, tc.password)
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	var count int
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	require.Equal(t, 0, count)
}

func TestAuthenticate(t *testing.T) {
	db := testDB(t)
	accounts := NewAccounts(db)

	_, err := accounts.Register("a@x.com", "p")
	require.NoError(t, err)

	user, err := accounts.Authenticate("a@x.com", "p")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", user.Email)

	_, err = accounts.Authenticate("a@x.com", "wrong")
	require.ErrorIs(t, err, ErrUnauthenticated)

	_, err = accounts.Authenticate("nobody@x.com", "p")
	require.ErrorIs(t, err, ErrUnauthenticated)
}
