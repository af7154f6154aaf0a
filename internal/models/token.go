package models

import (
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// ExpirySkew is how early a token is treated as expired so it is never used right at its deadline.
const ExpirySkew = 60 * time.Second

// TokenRecord is the cached OAuth credential set for one user.
//
// It is owned by the token store and replaced wholesale on refresh.
type TokenRecord struct {
	UserID       string    `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	Scope        string    `json:"scope,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewTokenRecord builds a record for userID from an [oauth2.Token] returned by an exchange or refresh.
func NewTokenRecord(userID string, token *oauth2.Token, now time.Time) *TokenRecord {
	record := &TokenRecord{
		UserID:       userID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		ExpiresAt:    token.Expiry,
		UpdatedAt:    now,
	}
	if record.TokenType == "" {
		record.TokenType = "Bearer"
	}
	if scope, ok := token.Extra("scope").(string); ok {
		record.Scope = scope
	}
	return record
}

// Expired reports whether the access token is expired, or expires within [ExpirySkew], at now.
//
// A record without an expiry never expires.
func (r *TokenRecord) Expired(now time.Time) bool {
	if r.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(ExpirySkew).Before(r.ExpiresAt)
}

// Scopes splits the space separated scope string.
func (r *TokenRecord) Scopes() []string {
	return strings.Fields(r.Scope)
}

// Clone returns a copy that can be handed out without sharing the stored value.
func (r *TokenRecord) Clone() *TokenRecord {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}
