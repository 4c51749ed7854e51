// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store provides database access for users, blogs, contact messages
// and the event log. All statements are single parameterized queries; the
// application issues no multi-statement transactions.
package store

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is the interface shared by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries wraps a database handle with typed query methods.
type Queries struct {
	db DBTX
}

// New creates a Queries instance bound to the given database handle.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// =============================================================================
// USERS
// =============================================================================

const createUser = `
INSERT INTO users (username, email, password_hash, role, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, username, email, password_hash, role, created_at, updated_at
`

// CreateUserParams holds parameters for CreateUser.
type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateUser inserts a new user and returns the created row.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, createUser,
		arg.Username, arg.Email, arg.PasswordHash, arg.Role, arg.CreatedAt, arg.UpdatedAt)
	return scanUser(row)
}

const getUserByID = `
SELECT id, username, email, password_hash, role, created_at, updated_at
FROM users WHERE id = ?
`

// GetUserByID returns the user with the given ID.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

const getUserByEmail = `
SELECT id, username, email, password_hash, role, created_at, updated_at
FROM users WHERE email = ?
`

// GetUserByEmail returns the user with the given email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByEmail, email))
}

const getUserByUsername = `
SELECT id, username, email, password_hash, role, created_at, updated_at
FROM users WHERE username = ?
`

// GetUserByUsername returns the user with the given username.
func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByUsername, username))
}

const getAdminByEmail = `
SELECT id, username, email, password_hash, role, created_at, updated_at
FROM users WHERE email = ? AND role = 'admin'
`

// GetAdminByEmail returns the admin user with the given email. A matching
// email with a non-admin role yields sql.ErrNoRows, indistinguishable from
// an unknown email.
func (q *Queries) GetAdminByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getAdminByEmail, email))
}

const listUsers = `
SELECT id, username, email, password_hash, role, created_at, updated_at
FROM users ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?
`

// ListUsersParams holds parameters for ListUsers.
type ListUsersParams struct {
	Limit  int64
	Offset int64
}

// ListUsers returns a page of users, newest first.
func (q *Queries) ListUsers(ctx context.Context, arg ListUsersParams) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const countUsers = `SELECT COUNT(*) FROM users`

// CountUsers returns the total number of users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countUsers).Scan(&n)
	return n, err
}

const updateUserPassword = `
UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?
`

// UpdateUserPasswordParams holds parameters for UpdateUserPassword.
type UpdateUserPasswordParams struct {
	PasswordHash string
	UpdatedAt    time.Time
	ID           int64
}

// UpdateUserPassword overwrites a user's password hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx, updateUserPassword, arg.PasswordHash, arg.UpdatedAt, arg.ID)
	return err
}

const updateUserRole = `
UPDATE users SET role = ?, updated_at = ? WHERE id = ?
`

// UpdateUserRoleParams holds parameters for UpdateUserRole.
type UpdateUserRoleParams struct {
	Role      string
	UpdatedAt time.Time
	ID        int64
}

// UpdateUserRole sets a user's role. Existing sessions keep the role copied
// at login time; the change takes effect at the user's next login.
func (q *Queries) UpdateUserRole(ctx context.Context, arg UpdateUserRoleParams) error {
	_, err := q.db.ExecContext(ctx, updateUserRole, arg.Role, arg.UpdatedAt, arg.ID)
	return err
}

const deleteUser = `DELETE FROM users WHERE id = ?`

// DeleteUser deletes a user. Owned blogs are removed by the schema's
// ON DELETE CASCADE.
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteUser, id)
	return err
}

// =============================================================================
// BLOGS
// =============================================================================

const createBlog = `
INSERT INTO blogs (user_id, title, content, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, user_id, title, content, status, created_at, updated_at
`

// CreateBlogParams holds parameters for CreateBlog.
type CreateBlogParams struct {
	UserID    int64
	Title     string
	Content   string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateBlog inserts a new blog post and returns the created row.
func (q *Queries) CreateBlog(ctx context.Context, arg CreateBlogParams) (Blog, error) {
	row := q.db.QueryRowContext(ctx, createBlog,
		arg.UserID, arg.Title, arg.Content, arg.Status, arg.CreatedAt, arg.UpdatedAt)
	return scanBlog(row)
}

const getBlogByID = `
SELECT id, user_id, title, content, status, created_at, updated_at
FROM blogs WHERE id = ?
`

// GetBlogByID returns the blog with the given ID.
func (q *Queries) GetBlogByID(ctx context.Context, id int64) (Blog, error) {
	return scanBlog(q.db.QueryRowContext(ctx, getBlogByID, id))
}

const getBlogWithAuthor = `
SELECT b.id, b.user_id, b.title, b.content, b.status, b.created_at, b.updated_at, u.username
FROM blogs b JOIN users u ON u.id = b.user_id
WHERE b.id = ?
`

// GetBlogWithAuthor returns the blog with the given ID joined with its
// author's username.
func (q *Queries) GetBlogWithAuthor(ctx context.Context, id int64) (BlogWithAuthor, error) {
	var b BlogWithAuthor
	err := q.db.QueryRowContext(ctx, getBlogWithAuthor, id).Scan(
		&b.ID, &b.UserID, &b.Title, &b.Content, &b.Status, &b.CreatedAt, &b.UpdatedAt, &b.AuthorUsername)
	return b, err
}

const listBlogsWithAuthor = `
SELECT b.id, b.user_id, b.title, b.content, b.status, b.created_at, b.updated_at, u.username
FROM blogs b JOIN users u ON u.id = b.user_id
ORDER BY b.created_at DESC, b.id DESC
`

// ListBlogsWithAuthor returns all blogs joined with author usernames,
// newest first.
func (q *Queries) ListBlogsWithAuthor(ctx context.Context) ([]BlogWithAuthor, error) {
	rows, err := q.db.QueryContext(ctx, listBlogsWithAuthor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBlogsWithAuthor(rows)
}

const listBlogsWithAuthorPaged = `
SELECT b.id, b.user_id, b.title, b.content, b.status, b.created_at, b.updated_at, u.username
FROM blogs b JOIN users u ON u.id = b.user_id
ORDER BY b.created_at DESC, b.id DESC
LIMIT ? OFFSET ?
`

// ListBlogsWithAuthorPagedParams holds parameters for ListBlogsWithAuthorPaged.
type ListBlogsWithAuthorPagedParams struct {
	Limit  int64
	Offset int64
}

// ListBlogsWithAuthorPaged returns a page of blogs joined with author
// usernames, newest first.
func (q *Queries) ListBlogsWithAuthorPaged(ctx context.Context, arg ListBlogsWithAuthorPagedParams) ([]BlogWithAuthor, error) {
	rows, err := q.db.QueryContext(ctx, listBlogsWithAuthorPaged, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBlogsWithAuthor(rows)
}

const listBlogsByUser = `
SELECT id, user_id, title, content, status, created_at, updated_at
FROM blogs WHERE user_id = ?
ORDER BY created_at DESC, id DESC
`

// ListBlogsByUser returns all blogs owned by the given user, newest first.
func (q *Queries) ListBlogsByUser(ctx context.Context, userID int64) ([]Blog, error) {
	rows, err := q.db.QueryContext(ctx, listBlogsByUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blogs []Blog
	for rows.Next() {
		var b Blog
		if err := rows.Scan(&b.ID, &b.UserID, &b.Title, &b.Content, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		blogs = append(blogs, b)
	}
	return blogs, rows.Err()
}

const countBlogs = `SELECT COUNT(*) FROM blogs`

// CountBlogs returns the total number of blogs.
func (q *Queries) CountBlogs(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countBlogs).Scan(&n)
	return n, err
}

const updateBlog = `
UPDATE blogs SET title = ?, content = ?, updated_at = ? WHERE id = ?
`

// UpdateBlogParams holds parameters for UpdateBlog.
type UpdateBlogParams struct {
	Title     string
	Content   string
	UpdatedAt time.Time
	ID        int64
}

// UpdateBlog updates a blog's title and content regardless of owner.
func (q *Queries) UpdateBlog(ctx context.Context, arg UpdateBlogParams) error {
	_, err := q.db.ExecContext(ctx, updateBlog, arg.Title, arg.Content, arg.UpdatedAt, arg.ID)
	return err
}

const deleteBlog = `DELETE FROM blogs WHERE id = ?`

// DeleteBlog deletes a blog regardless of owner.
func (q *Queries) DeleteBlog(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteBlog, id)
	return err
}

const deleteBlogOwned = `DELETE FROM blogs WHERE id = ? AND user_id = ?`

// DeleteBlogOwnedParams holds parameters for DeleteBlogOwned.
type DeleteBlogOwnedParams struct {
	ID     int64
	UserID int64
}

// DeleteBlogOwned deletes a blog only when it belongs to the given user.
// Ownership is enforced in the query predicate; a non-owner call affects
// zero rows and reports no error.
func (q *Queries) DeleteBlogOwned(ctx context.Context, arg DeleteBlogOwnedParams) error {
	_, err := q.db.ExecContext(ctx, deleteBlogOwned, arg.ID, arg.UserID)
	return err
}

const approveBlog = `
UPDATE blogs SET status = 'approved', updated_at = ? WHERE id = ?
`

// ApproveBlogParams holds parameters for ApproveBlog.
type ApproveBlogParams struct {
	UpdatedAt time.Time
	ID        int64
}

// ApproveBlog sets a blog's status to approved. Idempotent: approving an
// already-approved blog leaves it approved.
func (q *Queries) ApproveBlog(ctx context.Context, arg ApproveBlogParams) error {
	_, err := q.db.ExecContext(ctx, approveBlog, arg.UpdatedAt, arg.ID)
	return err
}

// =============================================================================
// CONTACT MESSAGES
// =============================================================================

const createContactMessage = `
INSERT INTO contact_messages (name, email, message, created_at)
VALUES (?, ?, ?, ?)
RETURNING id, name, email, message, created_at
`

// CreateContactMessageParams holds parameters for CreateContactMessage.
type CreateContactMessageParams struct {
	Name      string
	Email     string
	Message   string
	CreatedAt time.Time
}

// CreateContactMessage inserts a contact form submission.
func (q *Queries) CreateContactMessage(ctx context.Context, arg CreateContactMessageParams) (ContactMessage, error) {
	var m ContactMessage
	err := q.db.QueryRowContext(ctx, createContactMessage,
		arg.Name, arg.Email, arg.Message, arg.CreatedAt).Scan(
		&m.ID, &m.Name, &m.Email, &m.Message, &m.CreatedAt)
	return m, err
}

const listContactMessages = `
SELECT id, name, email, message, created_at
FROM contact_messages
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?
`

// ListContactMessagesParams holds parameters for ListContactMessages.
type ListContactMessagesParams struct {
	Limit  int64
	Offset int64
}

// ListContactMessages returns a page of contact messages, newest first.
func (q *Queries) ListContactMessages(ctx context.Context, arg ListContactMessagesParams) ([]ContactMessage, error) {
	rows, err := q.db.QueryContext(ctx, listContactMessages, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []ContactMessage
	for rows.Next() {
		var m ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

const countContactMessages = `SELECT COUNT(*) FROM contact_messages`

// CountContactMessages returns the total number of contact messages.
func (q *Queries) CountContactMessages(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countContactMessages).Scan(&n)
	return n, err
}

// =============================================================================
// EVENTS
// =============================================================================

const createEvent = `
INSERT INTO events (level, message, metadata, created_at)
VALUES (?, ?, ?, ?)
RETURNING id, level, message, metadata, created_at
`

// CreateEventParams holds parameters for CreateEvent.
type CreateEventParams struct {
	Level     string
	Message   string
	Metadata  string
	CreatedAt time.Time
}

// CreateEvent inserts an event log record.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (Event, error) {
	var e Event
	err := q.db.QueryRowContext(ctx, createEvent,
		arg.Level, arg.Message, arg.Metadata, arg.CreatedAt).Scan(
		&e.ID, &e.Level, &e.Message, &e.Metadata, &e.CreatedAt)
	return e, err
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func scanBlog(row *sql.Row) (Blog, error) {
	var b Blog
	err := row.Scan(&b.ID, &b.UserID, &b.Title, &b.Content, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

func collectBlogsWithAuthor(rows *sql.Rows) ([]BlogWithAuthor, error) {
	var blogs []BlogWithAuthor
	for rows.Next() {
		var b BlogWithAuthor
		if err := rows.Scan(&b.ID, &b.UserID, &b.Title, &b.Content, &b.Status, &b.CreatedAt, &b.UpdatedAt, &b.AuthorUsername); err != nil {
			return nil, err
		}
		blogs = append(blogs, b)
	}
	return blogs, rows.Err()
}
