package account

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/schoolkit/edupay/internal/account/domain"
	"github.com/schoolkit/edupay/internal/account/repository"
	"github.com/schoolkit/edupay/internal/account/usecase/command"
	"github.com/schoolkit/edupay/internal/account/usecase/query"
)

// Repository providers
func ProvideUserRepository(db *gorm.DB) domain.UserRepository {
	return repository.NewGormUserRepository(db)
}

func ProvideRoleRepository(db *gorm.DB) domain.RoleRepository {
	return repository.NewGormRoleRepository(db)
}

func ProvideSchoolRepository(db *gorm.DB) domain.SchoolRepository {
	return repository.NewGormSchoolRepository(db)
}

func ProvideEntityRepository(db *gorm.DB) domain.EntityRepository {
	return repository.NewGormEntityRepository(db)
}

func ProvideCredentialRepository(db *gorm.DB) domain.CredentialRepository {
	return repository.NewGormCredentialRepository(db)
}

// Command Handlers Providers
func ProvideCreateAccountHandler(
	users domain.UserRepository,
	roles domain.RoleRepository,
	schools domain.SchoolRepository,
	entity domain.EntityRepository,
	creds domain.CredentialRepository,
) *command.CreateAccountHandler {
	return command.NewCreateAccountHandler(users, roles, schools, entity, creds)
}

func ProvideSetupAdminHandler(users domain.UserRepository, roles domain.RoleRepository, schools domain.SchoolRepository) *command.SetupAdminHandler {
	return command.NewSetupAdminHandler(users, roles, schools)
}

func ProvideLoginUserHandler(users domain.UserRepository, roles domain.RoleRepository) *command.LoginUserHandler {
	return command.NewLoginUserHandler(users, roles)
}

func ProvideRegisterUserHandler(users domain.UserRepository) *command.RegisterUserHandler {
	return command.NewRegisterUserHandler(users)
}

// Query Handlers Providers
func ProvideGetUserHandler(users domain.UserRepository, roles domain.RoleRepository) *query.GetUserHandler {
	return query.NewGetUserHandler(users, roles)
}

func ProvideListUsersHandler(users domain.UserRepository) *query.ListUsersHandler {
	return query.NewListUsersHandler(users)
}

func ProvideCheckSchoolLimitHandler(schools domain.SchoolRepository, entity domain.EntityRepository) *query.CheckSchoolLimitHandler {
	return query.NewCheckSchoolLimitHandler(schools, entity)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideUserRepository,
	ProvideRoleRepository,
	ProvideSchoolRepository,
	ProvideEntityRepository,
	ProvideCredentialRepository,
)

var CommandHandlerSet = wire.NewSet(
	ProvideCreateAccountHandler,
	ProvideSetupAdminHandler,
	ProvideLoginUserHandler,
	ProvideRegisterUserHandler,
)

var QueryHandlerSet = wire.NewSet(
	ProvideGetUserHandler,
	ProvideListUsersHandler,
	ProvideCheckSchoolLimitHandler,
)

var AllHandlersSet = wire.NewSet(
	RepositorySet,
	CommandHandlerSet,
	QueryHandlerSet,
)
