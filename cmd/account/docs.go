package main

// @title Account Service API
// @version 1.0
// @description Authentication, account provisioning, and admin bootstrap for school staff, students, and parents

// @contact.name API Support

// @license.name MIT

// @host localhost:8081
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Auth
// @tag.description Authentication endpoints

// @tag.name Accounts
// @tag.description Account provisioning endpoints

// @tag.name Admin
// @tag.description Admin bootstrap and user management

// @tag.name Health
// @tag.description Health check endpoints
