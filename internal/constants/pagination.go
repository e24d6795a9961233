package constants

// Pagination Query Parameters
const (
	QueryParamPage     = "page"
	QueryParamLimit    = "limit"
	QueryParamQuery    = "query"
	QueryParamSortBy   = "sortBy"
	QueryParamSortType = "sortType"
	QueryParamUserID   = "userId"
)

// Pagination Limits
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MinPage      = 1
	MaxPage      = 10000
	MinLimit     = 1
	MaxLimit     = 100
)

// Sort Orders
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// Sortable video columns keyed by their query name
var VideoSortColumns = map[string]string{
	"createdAt": "created_at",
	"title":     "title",
	"duration":  "duration",
	"views":     "views",
}

const DefaultVideoSortBy = "createdAt"
