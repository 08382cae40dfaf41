package main

// @title Payment Service API
// @version 1.0
// @description Payment gateway adapter (bKash, SSLCommerz) and transaction ledger for school fee collection

// @contact.name API Support

// @license.name MIT

// @host localhost:8083
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @tag.name Payments
// @tag.description Gateway endpoints invoked by the dashboards

// @tag.name Admin
// @tag.description Admin-only ledger endpoints

// @tag.name Health
// @tag.description Health check endpoints
