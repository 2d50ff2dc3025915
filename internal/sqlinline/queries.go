// Package sqlinline holds the inline SQL used by the pg stores. Every query
// starts with a `--sql <slug>` marker line; the slug is what shows up in logs.
package sqlinline

const SchemaSocialAccounts = `--sql schema_social_accounts
CREATE TABLE IF NOT EXISTS social_accounts (
    id            TEXT PRIMARY KEY,
    platform      TEXT NOT NULL,
    display_name  TEXT NOT NULL DEFAULT '',
    handle        TEXT NOT NULL DEFAULT '',
    is_active     BOOLEAN NOT NULL DEFAULT TRUE,
    expires_at    TIMESTAMPTZ,
    connected_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const SchemaScheduledPosts = `--sql schema_scheduled_posts
CREATE TABLE IF NOT EXISTS scheduled_posts (
    id                TEXT PRIMARY KEY,
    account_id        TEXT NOT NULL,
    content_text      TEXT NOT NULL,
    scheduled_time    TIMESTAMPTZ NOT NULL,
    status            TEXT NOT NULL,
    error_message     TEXT NOT NULL DEFAULT '',
    platform_post_url TEXT NOT NULL DEFAULT '',
    retry_count       INTEGER NOT NULL DEFAULT 0,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// The pending slot is a single row: slot is always 1.
const SchemaOAuthPending = `--sql schema_oauth_pending
CREATE TABLE IF NOT EXISTS oauth_pending (
    slot       INTEGER PRIMARY KEY CHECK (slot = 1),
    token      TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const AccountUpsert = `--sql account_upsert
INSERT INTO social_accounts (id, platform, display_name, handle, is_active, expires_at, connected_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE SET
    platform     = EXCLUDED.platform,
    display_name = EXCLUDED.display_name,
    handle       = EXCLUDED.handle,
    is_active    = EXCLUDED.is_active,
    expires_at   = EXCLUDED.expires_at,
    connected_at = EXCLUDED.connected_at`

const AccountDeactivateOthers = `--sql account_deactivate_others
UPDATE social_accounts
SET is_active = FALSE
WHERE platform = $1 AND is_active = TRUE AND id <> $2`

const AccountActiveByPlatform = `--sql account_active_by_platform
SELECT id, platform, display_name, handle, is_active, expires_at, connected_at
FROM social_accounts
WHERE platform = $1 AND is_active = TRUE
ORDER BY connected_at DESC
LIMIT 1`

const AccountDeactivate = `--sql account_deactivate
UPDATE social_accounts
SET is_active = FALSE
WHERE id = $1`

const PostInsert = `--sql post_insert
INSERT INTO scheduled_posts (id, account_id, content_text, scheduled_time, status,
    error_message, platform_post_url, retry_count, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
    account_id        = EXCLUDED.account_id,
    content_text      = EXCLUDED.content_text,
    scheduled_time    = EXCLUDED.scheduled_time,
    status            = EXCLUDED.status,
    error_message     = EXCLUDED.error_message,
    platform_post_url = EXCLUDED.platform_post_url,
    retry_count       = EXCLUDED.retry_count,
    updated_at        = EXCLUDED.updated_at`

const PostByID = `--sql post_by_id
SELECT id, account_id, content_text, scheduled_time, status,
       error_message, platform_post_url, retry_count, created_at, updated_at
FROM scheduled_posts
WHERE id = $1`

const PostUpdate = `--sql post_update
UPDATE scheduled_posts
SET status            = $2,
    error_message     = $3,
    platform_post_url = $4,
    retry_count       = $5,
    updated_at        = $6
WHERE id = $1`

const PostList = `--sql post_list
SELECT id, account_id, content_text, scheduled_time, status,
       error_message, platform_post_url, retry_count, created_at, updated_at
FROM scheduled_posts
ORDER BY scheduled_time DESC, id`

const PendingUpsert = `--sql pending_upsert
INSERT INTO oauth_pending (slot, token, created_at)
VALUES (1, $1, now())
ON CONFLICT (slot) DO UPDATE SET token = EXCLUDED.token, created_at = EXCLUDED.created_at`

const PendingSelect = `--sql pending_select
SELECT token FROM oauth_pending WHERE slot = 1`

const PendingDelete = `--sql pending_delete
DELETE FROM oauth_pending WHERE slot = 1`
