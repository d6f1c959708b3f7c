package service

import (
	"beanpulse/internal/domain"
	"beanpulse/internal/repo"
)

// 管理端用的用户操作，薄薄一层包住 repo。

type UserService struct {
	users *repo.UserRepo
}

func NewUserService(users *repo.UserRepo) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Get(id string) (*domain.User, error) {
	return s.users.FindByID(id)
}

// Ban 软删，封禁后登录直接查不到。
func (s *UserService) Ban(id string) error {
	return s.users.SoftDelete(id)
}
