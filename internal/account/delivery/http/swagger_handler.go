package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs registers Swagger documentation routes
// @Summary Swagger documentation
// @Description Swagger API documentation
// @Tags Swagger
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, swaggerHandler http.Handler) {
	router.PathPrefix("/swagger/").Handler(swaggerHandler)
}

// Register godoc
// @Summary Register a new identity
// @Description Self-registration. The new identity holds no role until an admin bootstrap or provisioning grants one.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body object{username=string,email=string,password=string,full_name=string} true "Registration data"
// @Success 201 {object} object{id=int,username=string,email=string,full_name=string}
// @Failure 400 {object} object{error=string}
// @Router /auth/register [post]
func (h *AccountHandler) RegisterDoc() {}

// Login godoc
// @Summary User login
// @Description Authenticate with email and password and get a JWT token
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} object{token=string,user=object,roles=array}
// @Failure 401 {object} object{error=string}
// @Router /auth/login [post]
func (h *AccountHandler) LoginDoc() {}

// GetProfile godoc
// @Summary Get current user profile
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} object{user=object,roles=array}
// @Failure 401 {object} object{error=string}
// @Router /users/me [get]
func (h *AccountHandler) GetProfileDoc() {}

// CreateAccount godoc
// @Summary Provision an account (admin)
// @Description Create login credentials for a teacher, student, or parent. Student provisioning may cascade into a parent account when a guardian email is supplied.
// @Tags Accounts
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body object{school_id=int,entity_type=string,entity_id=int,email=string,full_name=string,parent_email=string,parent_name=string,send_email=bool} true "Provisioning request"
// @Success 200 {object} object{user_id=int,credentials=object{user_id=int,email=string,full_name=string,username=string,password=string},parent_credentials=object}
// @Failure 400 {object} object{limit_reached=bool,current=int,max=int,message=string}
// @Failure 401 {object} object{error=string}
// @Failure 403 {object} object{error=string}
// @Router /api/accounts [post]
func (h *AccountHandler) CreateAccountDoc() {}

// CheckSchoolLimit godoc
// @Summary Check subscription quota (admin)
// @Tags Accounts
// @Security BearerAuth
// @Produce json
// @Param school_id query int true "School ID"
// @Param entity_type query string true "Entity type (teacher/student/parent)"
// @Success 200 {object} object{allowed=bool,current=int,max=int,message=string}
// @Failure 400 {object} object{error=string}
// @Router /api/accounts/limit [get]
func (h *AccountHandler) CheckSchoolLimitDoc() {}

// SetupAdmin godoc
// @Summary Bootstrap an admin role
// @Description Grant super_admin or school_admin to an existing user. School admins also get a school created and linked.
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body object{user_id=int,email=string,role=string,school_name=string,school_code=string} true "Bootstrap request"
// @Success 200 {object} object{success=bool,user_id=int,role=string,school_id=int}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /api/admin/setup [post]
func (h *AccountHandler) SetupAdminDoc() {}

// ListUsers godoc
// @Summary List users (admin)
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Limit"
// @Param offset query int false "Offset"
// @Success 200 {object} object{users=array,total=int}
// @Failure 403 {object} object{error=string}
// @Router /admin/users [get]
func (h *AccountHandler) ListUsersDoc() {}

// GetUser godoc
// @Summary Get user by ID (admin)
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} object{user=object,roles=array}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /admin/users/{id} [get]
func (h *AccountHandler) GetUserDoc() {}

// HealthCheck godoc
// @Summary Health check
// @Description Check service health and database connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string}
// @Failure 503 {object} object{status=string,error=string}
// @Router /health [get]
func (h *AccountHandler) HealthCheckDoc() {}
