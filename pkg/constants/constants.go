// Package constants provides shared constants used throughout the minerals service.
// This includes timeouts, limits, file permissions and the on-disk naming
// conventions that must agree between the store, the publisher and the sweeper.
package constants

import "time"

// Timeout constants define various timeout durations used in the application
const (
	// DefaultHTTPTimeout is the transport timeout for calls to AI providers
	DefaultHTTPTimeout = 60 * time.Second

	// TranslateTimeout bounds one translation call; expiry counts as a failed translation
	TranslateTimeout = 20 * time.Second

	// SuggestTimeout bounds the image suggestion call
	SuggestTimeout = 45 * time.Second

	// ShutdownTimeout is how long serve waits for in-flight requests
	ShutdownTimeout = 30 * time.Second

	// RenderTimeout bounds one latexmk run
	RenderTimeout = 2 * time.Minute
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants define various limits and capacities
const (
	// DraftIDBytes is the number of random bytes in a draft id
	DraftIDBytes = 12

	// SessionTokenBytes is the number of random bytes in an admin session token
	SessionTokenBytes = 24

	// IdentifierSuffixBytes is the number of random bytes in a record suffix
	IdentifierSuffixBytes = 4

	// MaxIdentifierAttempts bounds suffix regeneration on folder collisions
	MaxIdentifierAttempts = 16

	// DefaultTranslateConcurrency is how many translation calls run at once
	DefaultTranslateConcurrency = 4

	// MaxUploadBytes caps the multipart body of a suggestion request
	MaxUploadBytes = 16 << 20

	// ReportCacheSize is the number of computed reports kept in memory
	ReportCacheSize = 512

	// ChannelBufferSize is the default buffer size for event channels
	ChannelBufferSize = 256
)

// Session and cookie constants
const (
	// SessionCookie carries the admin session token
	SessionCookie = "admin_session"

	// SessionTTL is the lifetime of an admin session
	SessionTTL = 8 * time.Hour

	// LanguageCookie carries the visitor's language choice
	LanguageCookie = "lang"

	// LanguageCookieMaxAge is one year in seconds
	LanguageCookieMaxAge = 31536000
)

// Store layout constants
const (
	// MineralsDir is the records directory under the data root
	MineralsDir = "minerals"

	// RecordPrefix starts every record folder name and metadata file name
	RecordPrefix = "record"

	// MetadataExt is the metadata file extension
	MetadataExt = ".json"

	// CanonicalMetadataFile is the un-suffixed legacy metadata file
	CanonicalMetadataFile = RecordPrefix + MetadataExt

	// ImageBaseName is the stem of the stored image file
	ImageBaseName = "image"

	// LockFile guards a data root against a second serve process
	LockFile = ".minerals.lock"

	// PublicDataPrefix is the URL prefix under which record images are served
	PublicDataPrefix = "/data/minerals"

	// DefaultOrphanAge is the minimum age of a folder before sweep considers it
	DefaultOrphanAge = time.Hour

	// MinOrphanApplyAge is the smallest threshold sweep deletes with; it stays
	// well above TranslateTimeout so a publish still translating is never removed
	MinOrphanApplyAge = time.Minute
)
