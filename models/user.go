package models

import (
	"context"
	"errors"

	"bitbucket.org/dpdiagnostics/clinicbooks_backend/config"
	"bitbucket.org/dpdiagnostics/clinicbooks_backend/utils"
)

// SeedSuperadminUsername is the bootstrap account and cannot be deleted.
const SeedSuperadminUsername = "dp_mamun"

type User struct {
	ID           int      `gorm:"primary_key" json:"id"`
	Username     string   `gorm:"size:80;uniqueIndex;not null" json:"username" binding:"required"`
	PasswordHash string   `gorm:"size:255;not null" json:"-"`
	Role         UserRole `gorm:"size:20;not null;default:employee" json:"role"`
}

type NewUser struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

func (u *User) SetPassword(password string) error {
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashed)
	return nil
}

func (u *User) CheckPassword(password string) bool {
	return utils.ComparePassword(u.PasswordHash, password) == nil
}

func (u User) Actor() Actor {
	return Actor{ID: u.ID, Username: u.Username, Role: u.Role}
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {
	if input.Username == "" || input.Password == "" {
		return nil, errors.New("username and password required")
	}
	role := UserRole(input.Role)
	if role != UserRoleAdmin && role != UserRoleEmployee {
		role = UserRoleEmployee
	}

	count, err := utils.ResourceCountWhere[User](ctx, "username = ?", input.Username)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errors.New("username already exists")
	}

	user := User{Username: input.Username, Role: role}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, err
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EnsureSeedSuperadmin creates the bootstrap superadmin when missing.
// The password only applies on first creation.
func EnsureSeedSuperadmin(ctx context.Context, password string) (*User, error) {
	db := config.GetDB()
	var user User
	err := db.WithContext(ctx).Where("username = ?", SeedSuperadminUsername).First(&user).Error
	if err == nil {
		return &user, nil
	}

	user = User{Username: SeedSuperadminUsername, Role: UserRoleSuperadmin}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser hard-deletes a user. The acting user and the seed superadmin
// account are protected.
func DeleteUser(ctx context.Context, actor Actor, id int) (*User, error) {
	user, err := utils.FetchModel[User](ctx, id)
	if err != nil {
		return nil, err
	}
	if user.ID == actor.ID || user.Username == SeedSuperadminUsername {
		return nil, errors.New("cannot delete this account")
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(&user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the old password before setting the new one.
func ChangePassword(ctx context.Context, actor Actor, oldPassword string, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return errors.New("all fields are required")
	}
	user, err := utils.FetchModel[User](ctx, actor.ID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(oldPassword) {
		return errors.New("old password incorrect")
	}
	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	db := config.GetDB()
	return db.WithContext(ctx).Model(user).Update("password_hash", user.PasswordHash).Error
}

// Authenticate returns the user when the credentials match.
func Authenticate(ctx context.Context, username string, password string) (*User, error) {
	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, errors.New("invalid username or password")
	}
	if !user.CheckPassword(password) {
		return nil, errors.New("invalid username or password")
	}
	return &user, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {
	return utils.FetchModel[User](ctx, id)
}

func ListUsers(ctx context.Context) ([]*User, error) {
	db := config.GetDB()
	var users []*User
	if err := db.WithContext(ctx).Order("username ASC").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
