package validator

import (
	"fmt"
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/ShalunBdk/VirtexShortLink/internal/domain"
	"github.com/ShalunBdk/VirtexShortLink/pkg/response"
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

var aliasPattern = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// Short codes the service needs for its own routes. Never allocatable,
// never claimable as custom aliases.
var defaultReservedWords = []string{
	"admin", "api", "app", "auth", "docs", "health", "healthz", "login",
	"logout", "metrics", "openapi", "readyz", "static", "status", "www",
}

// Hosts of known URL shorteners. Shortening an already-shortened URL is
// rejected to prevent redirect chains.
var shortenerHosts = []string{
	"bit.ly", "tinyurl.com", "t.co", "goo.gl", "is.gd", "ow.ly",
	"rebrand.ly", "cutt.ly", "clck.ru", "vk.cc",
}

var spamKeywords = []string{
	"casino", "gambling", "poker",
	"viagra", "cialis", "pharmacy",
	"lottery", "prize",
	"click-here", "free-money", "earn-money",
}

const (
	maxURLLength      = 2048
	maxSubdomainDepth = 5
	minAliasLength    = 3
	maxAliasLength    = 20
)

func init() {
	validate = validator.New()
	validate.RegisterValidation("alias", validateAliasCharset)
}

// urlRule is one predicate in the ordered spam/safety rule table. Rules run
// in order; the first non-empty reason rejects the URL.
type urlRule struct {
	name  string
	check func(u *url.URL) string
}

// Validator applies URL and alias rules against the configured reserved
// word set and host blacklist. Safe for concurrent use; never mutated
// after construction.
type Validator struct {
	reserved  map[string]bool
	blacklist []string
	urlRules  []urlRule
}

// New builds a Validator. Extra reserved words and blacklisted domains from
// config are merged with the built-in sets.
func New(extraReserved, blacklistDomains []string) *Validator {
	reserved := make(map[string]bool, len(defaultReservedWords)+len(extraReserved))
	for _, w := range defaultReservedWords {
		reserved[w] = true
	}
	for _, w := range extraReserved {
		reserved[strings.ToLower(w)] = true
	}

	blacklist := make([]string, 0, len(blacklistDomains))
	for _, d := range blacklistDomains {
		blacklist = append(blacklist, strings.ToLower(d))
	}

	v := &Validator{
		reserved:  reserved,
		blacklist: blacklist,
	}

	v.urlRules = []urlRule{
		{name: "scheme", check: checkScheme},
		{name: "private_host", check: checkPrivateHost},
		{name: "blacklisted_host", check: v.checkBlacklistedHost},
		{name: "shortener_chain", check: checkShortenerChain},
		{name: "subdomain_depth", check: checkSubdomainDepth},
		{name: "spam_keywords", check: checkSpamKeywords},
	}

	return v
}

// ValidateURL checks a submitted URL for syntactic validity and spam
// signatures. Returns *domain.ValidationError on rejection.
func (v *Validator) ValidateURL(raw string) error {
	if raw == "" {
		return domain.NewValidationError("URL cannot be empty")
	}

	if len(raw) > maxURLLength {
		return domain.NewValidationError("URL is too long (max %d characters)", maxURLLength)
	}

	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return domain.NewValidationError("invalid URL format")
	}

	for _, rule := range v.urlRules {
		if reason := rule.check(u); reason != "" {
			return domain.NewValidationError("%s", reason)
		}
	}

	return nil
}

// ValidateAlias checks a custom alias against charset, length and the
// reserved word set. The alias is compared case-folded.
func (v *Validator) ValidateAlias(alias string) error {
	if len(alias) < minAliasLength {
		return domain.NewValidationError("alias must be at least %d characters", minAliasLength)
	}

	if len(alias) > maxAliasLength {
		return domain.NewValidationError("alias must be at most %d characters", maxAliasLength)
	}

	if !aliasPattern.MatchString(alias) {
		return domain.NewValidationError("alias can only contain letters, digits, and hyphens")
	}

	folded := strings.ToLower(alias)

	if strings.HasPrefix(folded, "-") || strings.HasSuffix(folded, "-") {
		return domain.NewValidationError("alias cannot start or end with a hyphen")
	}

	if v.reserved[folded] {
		return domain.NewValidationError("%q is a reserved word and cannot be used", alias)
	}

	return nil
}

// IsReserved reports whether a case-folded code belongs to the reserved set.
func (v *Validator) IsReserved(code string) bool {
	return v.reserved[strings.ToLower(code)]
}

func checkScheme(u *url.URL) string {
	if u.Scheme != "http" && u.Scheme != "https" {
		return "only HTTP and HTTPS URLs are allowed"
	}
	return ""
}

func checkPrivateHost(u *url.URL) string {
	host := strings.ToLower(u.Hostname())

	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return "internal/private URLs are not allowed"
	}

	if ip := net.ParseIP(host); ip != nil {
		if ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified() {
			return "internal/private URLs are not allowed"
		}
	}

	return ""
}

func (v *Validator) checkBlacklistedHost(u *url.URL) string {
	host := strings.ToLower(u.Hostname())

	for _, blocked := range v.blacklist {
		if host == blocked || strings.HasSuffix(host, "."+blocked) {
			return "URL host is blacklisted"
		}
	}

	return ""
}

func checkShortenerChain(u *url.URL) string {
	host := strings.ToLower(u.Hostname())

	for _, shortener := range shortenerHosts {
		if host == shortener || strings.HasSuffix(host, "."+shortener) {
			return "shortened URLs cannot be shortened again"
		}
	}

	return ""
}

func checkSubdomainDepth(u *url.URL) string {
	host := strings.ToLower(u.Hostname())

	if net.ParseIP(host) != nil {
		return ""
	}

	if strings.Count(host, ".") > maxSubdomainDepth {
		return "URL has too many subdomains"
	}

	return ""
}

func checkSpamKeywords(u *url.URL) string {
	lowered := strings.ToLower(u.String())

	for _, keyword := range spamKeywords {
		if strings.Contains(lowered, keyword) {
			return "URL appears to be spam and cannot be shortened"
		}
	}

	return ""
}

// ValidateStruct runs go-playground tag validation over a request body.
func ValidateStruct(data interface{}) []response.ValidationError {
	var validationErrors []response.ValidationError

	err := validate.Struct(data)
	if err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, response.ValidationError{
				Field:   err.Field(),
				Message: getErrorMessage(err),
			})
		}
	}

	return validationErrors
}

func validateAliasCharset(fl validator.FieldLevel) bool {
	return aliasPattern.MatchString(fl.Field().String())
}

func getErrorMessage(err validator.FieldError) string {
	field := err.Field()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, err.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, err.Param())
	case "alias":
		return fmt.Sprintf("%s can only contain letters, digits, and hyphens", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, err.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
