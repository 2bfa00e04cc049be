package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Version is injected via -ldflags.
var Version = "dev"

// UserAgent identifies the HTTP client.
var UserAgent = "Friends-Kids/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName        = "Friends Kids"
	AppID          = "friendskids"
	KeyringService = "com.github.friendskids"
	LogFileName    = "friendskids.log"
	ConfigFileName = "config.toml"
	EnvPrefix      = "FRIENDSKIDS_"
	EnvTestDB      = "FRIENDSKIDS_TEST_DATABASE_URL"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	// Used for sensitive files like logs.
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Commands & Flags
// -----------------------------------------------------------------------------

const (
	CmdRoot     = "friendskids"
	CmdServe    = "serve"
	CmdUpcoming = "upcoming"
	CmdImport   = "import"
	CmdKeyring  = "keyring"
	CmdVersion  = "version"
	CmdSet      = "set"
	CmdDelete   = "delete"

	UseImport    = "import [file.vcf]"
	UseKeySet    = "set <name>"
	UseKeyDelete = "delete <name>"

	CmdDescRoot     = "Track your friends' kids birthdays"
	CmdDescServe    = "Run the JSON API, the calendar feed and the reminder worker"
	CmdDescUpcoming = "List upcoming birthdays"
	CmdDescImport   = "Import kids from a vCard file or URL"
	CmdDescKeyring  = "Manage credentials stored in the OS keyring"
	CmdDescKeySet   = "Store a credential (read from stdin)"
	CmdDescKeyDel   = "Delete a stored credential"
	CmdDescVersion  = "Print version information"

	FlagConfig  = "config"
	FlagDebug   = "debug"
	FlagUser    = "user"
	FlagFriend  = "friend"
	FlagSearch  = "search"
	FlagFilter  = "filter"
	FlagLimit   = "limit"
	FlagURL     = "url"
	FlagWebUser = "web-user"
	FlagDryRun  = "dry-run"

	FlagDescConfig  = "Path to the TOML configuration file"
	FlagDescDebug   = "Enable debug logging"
	FlagDescUser    = "User ID whose data is read"
	FlagDescFriend  = "Friend ID the imported kids belong to"
	FlagDescSearch  = "Case-insensitive search on kid or friend name"
	FlagDescFilter  = "Filter: all, this-month, milestones, pending-rsvp, no-gift, not-texted"
	FlagDescLimit   = "Maximum number of rows (0 = no limit)"
	FlagDescURL     = "Fetch the vCard file from this http(s) URL instead of a local path"
	FlagDescWebUser = "Basic auth user for --url (password read from the keyring)"
	FlagDescDryRun  = "Parse and print, do not write to the backend"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Default Values & Business Logic
// -----------------------------------------------------------------------------

const (
	BackendModeREST      = "rest"
	BackendModePostgres  = "postgres"
	DefaultListenAddr    = "127.0.0.1:8080"
	DefaultLanguage      = "en"
	DefaultDashboardSize = 5
	DefaultReminderEvery = 1 * time.Hour
	CLITokenTTL          = 5 * time.Minute

	// Urgency thresholds (days until the next birthday).
	UrgencySoonDays     = 7
	UrgencyUpcomingDays = 30

	// NotTextedWindowDays bounds the "not-texted" dashboard filter.
	NotTextedWindowDays = 7
)

// DefaultReminderLeadDays are the DaysUntil values that trigger a reminder.
var DefaultReminderLeadDays = []int{7, 1, 0}

// -----------------------------------------------------------------------------
// Keyring Entries
// -----------------------------------------------------------------------------

const (
	SecretServiceKey  = "service_key"
	SecretDatabaseURL = "database_url"
	SecretJWTSecret   = "jwt_secret"

	// SecretWebPrefix prefixes the basic auth password of a vCard URL user.
	SecretWebPrefix = "web:"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion   = "2.0"
	ICalProdid    = "-//Friends Kids//Calendar//EN"
	ICalCalName   = "Kids Birthdays"
	ICalMethod    = "PUBLISH"
	ICalScale     = "GREGORIAN"
	ICalComponent = "VALARM"
	ICalAction    = "DISPLAY"
	ICalDomain    = "friendskids"

	// iCal/vCard Fields
	PropUID         = "UID"
	PropSummary     = "SUMMARY"
	PropDTStart     = "DTSTART"
	PropDTStamp     = "DTSTAMP"
	PropRefresh     = "REFRESH-INTERVAL"
	PropAction      = "ACTION"
	PropDescription = "DESCRIPTION"
	PropTrigger     = "TRIGGER"
	PropVersion     = "VERSION"
	PropProdid      = "PRODID"
	PropXWRCalName  = "X-WR-CALNAME"
	PropCalScale    = "CALSCALE"
	PropMethod      = "METHOD"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"

	DefaultICalRefresh = 12 * time.Hour
)

// -----------------------------------------------------------------------------
// Data Formats & Limits
// -----------------------------------------------------------------------------

const (
	// DateFormatISO is the storage format of birthdates and due dates.
	DateFormatISO = "2006-01-02"

	// Extra layouts accepted in vCard BDAY fields.
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	MaxNameLength  = 200
	MaxNotesLength = 4000

	// FormatUID expects the kid ID, the year and the domain.
	FormatUID = "%s-%d@%s"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	MaxHTTPResponseSize = 32 * 1024 * 1024 // 32MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
)

// -----------------------------------------------------------------------------
// HTTP Routes, Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	RouteHealth       = "/health"
	RouteAPI          = "/api"
	RouteDashboard    = "/dashboard"
	RouteFriends      = "/friends"
	RouteFriend       = "/friends/:id"
	RouteFriendKids   = "/friends/:id/kids"
	RouteFriendPregs  = "/friends/:id/pregnancies"
	RouteKid          = "/kids/:id"
	RoutePregnancy    = "/pregnancies/:id"
	RouteCalendar     = "/calendar.ics"
	ParamID           = "id"
	QuerySearch       = "search"
	QueryFilter       = "filter"
	QueryLimit        = "limit"
	RESTPathPrefix    = "/rest/v1/"
	RESTTableFriends  = "friends"
	RESTTableKids     = "kids"
	RESTTablePregs    = "pregnancies"
	RESTSelectAll     = "*"
	RESTPreferReturn  = "return=representation"
	RESTOrderName     = "name.asc"
	RESTOrderBirth    = "birthdate.asc"
	RESTOrderDueDate  = "due_date.asc"
	RESTEqPrefix      = "eq."
	RESTSelectWithFK  = "*,friends!inner(name,user_id,reminder_enabled)"
	RESTParamSelect   = "select"
	RESTParamOrder    = "order"
	AuthScheme        = "Bearer"
	AuthAudience      = "authenticated"
	ContextKeyUserID  = "auth_user_id"
	ContextKeyEmail   = "auth_email"
	ContextKeyLocal   = "localizer"
	HeaderAuth        = "Authorization"
	HeaderAPIKey      = "apikey"
	HeaderPrefer      = "Prefer"
	HeaderAccept      = "Accept"
	HeaderAcceptLang  = "Accept-Language"
	HeaderContentType = "Content-Type"
	HeaderCacheCtl    = "Cache-Control"
	HeaderETag        = "ETag"
	HeaderIfNoneMatch = "If-None-Match"
	HeaderIfModSince  = "If-Modified-Since"
	HeaderLastMod     = "Last-Modified"
	HeaderUserAgent   = "User-Agent"
	HeaderXContent    = "X-Content-Type-Options"

	MimeJSON            = "application/json"
	MimeVCard           = "text/vcard, text/x-vcard;q=0.9, */*;q=0.1"
	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrInvalidDate       = "invalid date"
	ErrConfigLoad        = "failed to load configuration"
	ErrConfigInvalid     = "invalid configuration"
	ErrBackendURLEmpty   = "configuration error: backend URL is empty"
	ErrAnonKeyEmpty      = "configuration error: backend anon key is empty"
	ErrDatabaseURLEmpty  = "configuration error: database URL is empty"
	ErrServiceKeyEmpty   = "configuration error: backend service key is empty"
	ErrJWTSecretEmpty    = "configuration error: JWT secret is empty"
	ErrModeUnsupport     = "configuration error: unsupported backend mode"
	ErrServerStartup     = "server startup failed"
	ErrServerShutdown    = "server shutdown failed"
	ErrInvalidURL        = "invalid URL structure"
	ErrProtocol          = "unsupported protocol scheme (http/https only)"
	ErrBackendRequest    = "backend request failed"
	ErrBackendStatus     = "backend returned unexpected status"
	ErrBackendDecode     = "failed to decode backend response"
	ErrDatabaseConnect   = "failed to connect to database"
	ErrDatabaseQuery     = "database query failed"
	ErrVCardParse        = "failed to parse vCard stream"
	ErrICalEncode        = "failed to encode iCalendar data"
	ErrLogFile           = "failed to open log file"
	ErrCacheDir          = "could not determine user cache dir"
	ErrCreateDir         = "could not create app cache dir"
	ErrAppFailed         = "application failed unexpectedly"
	ErrLocalesAccess     = "failed to access embedded locales"
	ErrLocaleLoad        = "failed to load locale file"
	ErrKeyringUnavail    = "OS keyring is not available"
	ErrSecretEmpty       = "secret value cannot be empty"
	ErrSecretUnknown     = "unknown secret name"
	ErrUserIDInvalid     = "user ID must be a UUID"
	ErrFriendIDInvalid   = "friend ID must be a UUID"
	ErrNameRequired      = "name is required"
	ErrNameTooLong       = "name is too long"
	ErrNotesTooLong      = "notes are too long"
	ErrStatusInvalid     = "status must be one of yes, no, n/a"
	ErrNotFound          = "not found"
	ErrInvalidToken      = "invalid token"
	ErrExpiredToken      = "token has expired"
	ErrSubjectInvalid    = "token subject is not a user ID"
	ErrSigningMethod     = "unexpected signing method"
	ErrReadFile          = "failed to read input file"
	ErrSecretRead        = "failed to read secret value"
	ErrFetch             = "vCard download failed"
	ErrFetchStatus       = "vCard source returned unexpected status"
	ErrImportSource      = "provide either a file path or --url"
)

// -----------------------------------------------------------------------------
// HTTP Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgAuthRequired = "Authorization header required"
	HTTPMsgAuthFormat   = "Invalid authorization format. Use: Bearer <token>"
	HTTPMsgTokenExpired = "Token has expired"
	HTTPMsgTokenInvalid = "Invalid token"
	HTTPMsgBadRequest   = "Invalid request body"
	HTTPMsgBadID        = "Invalid identifier"
	HTTPMsgBadQuery     = "Invalid query parameter"
	HTTPMsgNotFound     = "Not found"
	HTTPMsgInternalErr  = "Internal Server Error"
	HTTPStatusHealthy   = "healthy"
	HTTPKeyError        = "error"
	HTTPKeyStatus       = "status"
	HTTPKeyVersion      = "version"
)

// -----------------------------------------------------------------------------
// Fallbacks & Messages
// -----------------------------------------------------------------------------

const (
	FallbackSummaryAge   = "Birthday: %s (%d)"
	FallbackSummaryBirth = "Birthday: %s (birth)"
	FallbackName         = "Unknown"

	// StubVCalendar is the minimal valid iCalendar object used when no events are found.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"

	MsgAppStarting     = "Starting application"
	MsgAppStop         = "Application stopped gracefully"
	MsgServerListen    = "HTTP server listening"
	MsgServerStop      = "Shutting down HTTP server..."
	MsgRequest         = "HTTP request"
	MsgWorkerStart     = "Reminder worker started"
	MsgWorkerStop      = "Reminder worker stopping due to context cancellation"
	MsgReminderScan    = "Reminder scan finished"
	MsgReminderFailed  = "Reminder scan failed"
	MsgReminderDue     = "Birthday reminder"
	MsgNotifyFailed    = "Reminder notification failed"
	MsgSkippedKid      = "Skipping kid with invalid birthdate"
	MsgSkippedCard     = "Skipping malformed vCard"
	MsgSkippedDate     = "Skipping invalid date format"
	MsgSkippedNoYear   = "Skipping birthday without a year"
	MsgImportDone      = "vCard import finished"
	MsgImportRow       = "%s\t%s\n"
	MsgCalendarBuilt   = "Calendar generation successful"
	MsgCacheUpdated    = "Calendar cache updated"
	MsgRequestFailed   = "Request failed"
	MsgSkippedPreg     = "Skipping pregnancy with invalid due date"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleBadName   = "Skipping malformed locale filename"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgTransMissing    = "Missing translation key"
	MsgSecretMissing   = "Secret not found in keyring"
	MsgSecretStored    = "Secret stored in keyring"
	MsgSecretDeleted   = "Secret deleted from keyring"
	MsgBackendRequest  = "Backend request"
	MsgLogWarning      = "Warning: %s at %s: %v\n"
	MsgUpcomingHeader  = "%-20s %-20s %-10s %5s %5s %s\n"
	MsgUpcomingRow     = "%-20s %-20s %-10s %5d %5d %s\n"
	MsgEnterSecret     = "Enter value for %s: "
	MsgSecretStoredOut = "Stored %s in the OS keyring.\n"
	MsgSecretDelOut    = "Deleted %s from the OS keyring.\n"
	MsgImportSummary   = "%d contacts, %d with a full birthday, %d without year, %d malformed\n"
	MsgImportDryRun    = "Dry run: nothing written.\n"
	MsgStoreOpened     = "Backend store ready"
	MsgFetchStart      = "Downloading vCard stream"
	MsgFetchBadStatus  = "vCard source returned an error status"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyToday          = "countdown_today"
	TKeyTomorrow       = "countdown_tomorrow"
	TKeyInDays         = "countdown_in_days" // Requires Count
	TKeyTurning        = "label_turning"     // Requires Age
	TKeyMilestone      = "label_milestone"
	TKeyEvtSummaryAge  = "event_summary_age"   // Requires Name, Age
	TKeyEvtSummaryBirt = "event_summary_birth" // Requires Name
	TKeyDueIn          = "pregnancy_due_in"    // Requires Count
	TKeyOverdue        = "pregnancy_overdue"   // Requires Count
	TKeyEmptyUpcoming  = "empty_upcoming"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyMethod    = "method"
	LogKeyPath      = "path"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyAddr      = "addr"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyUser      = "user_id"
	LogKeyFriend    = "friend_id"
	LogKeyKid       = "kid_id"
	LogKeyName      = "name"
	LogKeyValue     = "value"
	LogKeyStats     = "stats"
	LogKeyCount     = "count"
	LogKeyTotal     = "total"
	LogKeyNotified  = "notified"
	LogKeySkipped   = "skipped"
	LogKeyDaysUntil = "days_until"
	LogKeyAge       = "age"
	LogKeyDuration  = "duration_ms"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyTable     = "table"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompMain     = "main"
	CompCLI      = "cli"
	CompEngine   = "engine"
	CompServer   = "server"
	CompFetcher  = "fetcher"
	CompStore    = "store"
	CompWorker   = "worker"
	CompI18n     = "i18n"
	CompAuth     = "auth"
	CompSecrets  = "secrets"
	CompCalendar = "calendar"
)
