package environment

import (
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/catalpainternational/dockertree/internal/compose"
	"github.com/catalpainternational/dockertree/internal/config"
	"github.com/catalpainternational/dockertree/internal/pathutil"
)

// composeOverridePath returns the transformed compose document a domain/IP
// override rewrite updates in place.
func composeOverridePath(worktreePath string) string {
	return filepath.Join(worktreePath, ".dockertree", "docker-compose.yml")
}

// Generator builds and rewrites the scoped env files a branch environment
// runs with, allocating host ports as it goes.
type Generator struct {
	allocator *Allocator
}

// NewGenerator builds a Generator.
func NewGenerator() *Generator {
	return &Generator{allocator: NewAllocator()}
}

// CreateWorktreeEnv ensures the worktree's .env and .dockertree/env.dockertree
// files exist, copying the project's own .env when present (idempotent — a
// second call with the same source is a no-op), and synthesizes the scoped
// env file's content. If domain is non-empty, the file is generated for a
// domain-routed (HTTPS, BUILD_MODE=prod) deployment instead of the local
// default.
func (g *Generator) CreateWorktreeEnv(projectName, branch, worktreePath, sourceWorktreePath, worktreesRoot, legacyRoot, domain string) (map[string]string, error) {
	if sourceWorktreePath != "" {
		if _, err := pathutil.CopyEnvFile(sourceWorktreePath, worktreePath); err != nil {
			return nil, err
		}
	}

	dbPort, dbWarn := g.allocator.Allocate(PoolDB, branch, worktreesRoot, legacyRoot)
	redisPort, redisWarn := g.allocator.Allocate(PoolRedis, branch, worktreesRoot, legacyRoot)
	webPort, webWarn := g.allocator.Allocate(PoolWeb, branch, worktreesRoot, legacyRoot)

	vars := map[string]string{
		"COMPOSE_PROJECT_NAME": config.ComposeProjectName(projectName, branch),
		"PROJECT_ROOT":         worktreePath,
		"DB_HOST_PORT":         strconv.Itoa(dbPort),
		"REDIS_HOST_PORT":      strconv.Itoa(redisPort),
		"WEB_HOST_PORT":        strconv.Itoa(webPort),
	}

	if domain != "" {
		applyDomainVars(vars, projectName, branch, domain)
	} else {
		applyLocalVars(vars, projectName, branch)
	}

	if err := pathutil.WriteEnvFile(pathutil.EnvDockertreeFilePath(worktreePath), vars); err != nil {
		return nil, err
	}

	return vars, firstNonNil(dbWarn, redisWarn, webWarn)
}

func firstNonNil(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// applyLocalVars fills in the default local (HTTP, *.localhost) variant of
// the scoped env vars.
func applyLocalVars(vars map[string]string, projectName, branch string) {
	domain := config.Domain(projectName, branch)
	vars["SITE_DOMAIN"] = domain
	vars["ALLOWED_HOSTS"] = config.AllowedHosts(projectName, branch, []string{"*." + "localhost"})
	vars["DEBUG"] = "True"
	vars["USE_X_FORWARDED_HOST"] = "True"
	vars["CSRF_TRUSTED_ORIGINS"] = "http://" + domain
	vars["USE_SECURE_COOKIES"] = strconv.FormatBool(SecureCookiePolicy("http://" + domain))
	vars["BUILD_MODE"] = "dev"
}

// applyDomainVars fills in the production-domain variant of the scoped env
// vars: HTTPS site URL, wildcard host entry, prod build mode, and a default
// Caddy ACME contact address when none is set.
func applyDomainVars(vars map[string]string, projectName, branch, domain string) {
	siteURL := "https://" + domain
	vars["SITE_DOMAIN"] = domain
	vars["ALLOWED_HOSTS"] = config.AllowedHosts(projectName, branch, []string{domain, "*." + domain})
	vars["DEBUG"] = "False"
	vars["USE_X_FORWARDED_HOST"] = "True"
	vars["CSRF_TRUSTED_ORIGINS"] = siteURL
	vars["USE_SECURE_COOKIES"] = strconv.FormatBool(SecureCookiePolicy(siteURL))
	vars["BUILD_MODE"] = "prod"
	if _, ok := vars["CADDY_EMAIL"]; !ok {
		vars["CADDY_EMAIL"] = "admin@" + domain
	}
}

// SecureCookiePolicy reports whether cookies issued for siteURL should carry
// the Secure flag: true iff the URL scheme is explicitly https, or the host
// is neither "localhost", a ".localhost" suffix, nor a bare IPv4 literal.
func SecureCookiePolicy(siteURL string) bool {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(siteURL, "https://"), "http://")
	if strings.HasPrefix(siteURL, "https://") {
		return true
	}
	host := trimmed
	if idx := strings.IndexAny(host, ":/"); idx >= 0 {
		host = host[:idx]
	}
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return false
	}
	if net.ParseIP(host) != nil {
		return false
	}
	return true
}

// ApplyDomainOverrides rewrites the scoped env file at worktreePath for a
// domain-routed deployment: SITE_DOMAIN, ALLOWED_HOSTS (with a wildcard host
// entry), DEBUG, USE_X_FORWARDED_HOST, CSRF_TRUSTED_ORIGINS,
// USE_SECURE_COOKIES, and BUILD_MODE=prod. No SECURE_PROXY_SSL_HEADER entry
// is written. Also rewrites the worktree's transformed compose
// document: proxy labels and network for every web service, and frontend
// source bind mounts stripped.
func ApplyDomainOverrides(worktreePath, domain string, debug bool) error {
	return rewriteScopedEnv(worktreePath, domain, debug, false)
}

// ApplyIPOverrides rewrites the scoped env file and compose document the
// same way ApplyDomainOverrides does, but for an HTTP-only bare-IP
// deployment: no secure cookies, no wildcard host entry.
func ApplyIPOverrides(worktreePath, ip string, debug bool) error {
	return rewriteScopedEnv(worktreePath, ip, debug, true)
}

func rewriteScopedEnv(worktreePath, host string, debug, ipOnly bool) error {
	envPath := pathutil.EnvDockertreeFilePath(worktreePath)
	vars, err := pathutil.LoadEnvFile(envPath)
	if err != nil {
		return err
	}

	scheme := "https"
	if ipOnly {
		scheme = "http"
	}
	siteURL := scheme + "://" + host

	allowedHosts := host
	if !ipOnly {
		allowedHosts = host + ", *." + host
	}

	vars["SITE_DOMAIN"] = host
	vars["ALLOWED_HOSTS"] = "localhost, 127.0.0.1, " + allowedHosts
	vars["DEBUG"] = strconv.FormatBool(debug)
	vars["USE_X_FORWARDED_HOST"] = "True"
	vars["CSRF_TRUSTED_ORIGINS"] = siteURL
	vars["USE_SECURE_COOKIES"] = strconv.FormatBool(SecureCookiePolicy(siteURL))
	vars["BUILD_MODE"] = "prod"

	if err := pathutil.WriteEnvFile(envPath, vars); err != nil {
		return err
	}

	return rewriteComposeOverride(worktreePath, host)
}

// rewriteComposeOverride patches the worktree's already-transformed compose
// document for a domain/IP override: every web service's caddy.proxy*
// labels are pointed at host and the service is attached to the shared
// proxy network, then (since overrides always set BUILD_MODE=prod) any
// frontend service's source bind mounts are stripped. A worktree with no
// compose document yet (not created through the engine) is left alone.
func rewriteComposeOverride(worktreePath, host string) error {
	composePath := composeOverridePath(worktreePath)
	if _, err := os.Stat(composePath); os.IsNotExist(err) {
		return nil
	}

	project, err := compose.Load(composePath)
	if err != nil {
		return err
	}

	for i := range project.Services {
		svc := &project.Services[i]
		if !compose.IsWebService(svc.Name) {
			continue
		}
		compose.UpdateProxyLabels(svc, host, config.DefaultCaddyNetwork)
	}

	compose.StripFrontendBindMounts(project, IsFrontendService)

	return compose.Write(project, composePath)
}

// frontendServiceNames are the service-name tokens treated as frontend
// services when deciding whether to strip source-code bind mounts in a
// prod-mode compose override.
var frontendServiceNames = map[string]bool{
	"frontend": true,
	"web":      true,
	"client":   true,
	"app":      true,
}

// IsFrontendService reports whether a service name or build-context path
// identifies a frontend service whose source bind mounts should be dropped
// when BUILD_MODE=prod.
func IsFrontendService(serviceName, buildContext string) bool {
	if frontendServiceNames[strings.ToLower(serviceName)] {
		return true
	}
	lowerCtx := strings.ToLower(buildContext)
	for name := range frontendServiceNames {
		if strings.Contains(lowerCtx, name) {
			return true
		}
	}
	return false
}
