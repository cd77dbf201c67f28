package collect

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/in-rolls/missing-daughters-of-pols/internal/extract"
	"github.com/in-rolls/missing-daughters-of-pols/internal/fetch"
	"github.com/in-rolls/missing-daughters-of-pols/internal/model"
	"github.com/in-rolls/missing-daughters-of-pols/internal/util"
	"github.com/in-rolls/missing-daughters-of-pols/internal/validate"
)

// Assist proposes counts for biography text the rule chain could not
// read. Optional; results are always flagged as inferred.
type Assist interface {
	Children(ctx context.Context, text string) (extract.Counts, error)
}

// Biography collects from an HTML member list: it follows each member
// link, pulls the visible page text and runs the child-count rule
// chain over it. Works for assembly sites and Wikipedia member lists.
type Biography struct {
	session   *fetch.Session
	norm      *validate.Normalizer
	extractor *extract.ChildExtractor
	robots    *util.RobotsChecker
	assist    Assist
	logf      Logf

	name         string
	listURL      string
	linkSelector string
	extra        map[string]string
}

// BiographyConfig configures one HTML biography source.
type BiographyConfig struct {
	// Name labels the produced dataset (e.g. "kerala_assembly").
	Name string
	// ListURL is the member list page; LinkSelector is a goquery
	// selector for the member links on it (e.g. "table.members a").
	ListURL      string
	LinkSelector string
	// Extra fields stamped on every record (state, year, ...).
	Extra map[string]string
}

// NewBiography creates the source. robots and assist may be nil.
func NewBiography(session *fetch.Session, norm *validate.Normalizer, cfg BiographyConfig, robots *util.RobotsChecker, assist Assist, logf Logf) *Biography {
	return &Biography{
		session:      session,
		norm:         norm,
		extractor:    extract.NewChildExtractor(),
		robots:       robots,
		assist:       assist,
		logf:         logf,
		name:         cfg.Name,
		listURL:      cfg.ListURL,
		linkSelector: cfg.LinkSelector,
		extra:        cfg.Extra,
	}
}

func (s *Biography) Name() string {
	return s.name
}

// Collect fetches the member list, then each member page. Pages that
// fail to fetch or parse are logged and skipped.
func (s *Biography) Collect(ctx context.Context) (model.Dataset, error) {
	members, err := s.memberLinks(ctx)
	if err != nil {
		return nil, err
	}

	var ds model.Dataset
	for _, m := range members {
		if err := ctx.Err(); err != nil {
			return ds, err
		}

		if s.robots != nil && !s.robots.IsAllowed(ctx, m.url) {
			s.log("robots.txt disallows %s", m.url)
			continue
		}

		rec, ok := s.collectPage(ctx, m)
		if ok {
			ds = append(ds, rec)
		}
	}
	return ds, nil
}

type memberLink struct {
	name string
	url  string
}

func (s *Biography) memberLinks(ctx context.Context) ([]memberLink, error) {
	res, err := s.session.Get(ctx, s.listURL)
	if err != nil {
		return nil, err
	}
	if !res.OK() {
		return nil, errStatus(res)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(res.FinalURL)
	if err != nil {
		return nil, err
	}

	var members []memberLink
	seen := make(map[string]bool)
	doc.Find(s.linkSelector).Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		name := strings.TrimSpace(sel.Text())
		if name == "" {
			return
		}
		resolved := resolveHref(base, href)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		members = append(members, memberLink{name: name, url: resolved})
	})
	return members, nil
}

func (s *Biography) collectPage(ctx context.Context, m memberLink) (model.Record, bool) {
	res, err := s.session.Get(ctx, m.url)
	if err != nil {
		s.log("%s: %v", m.name, err)
		return model.Record{}, false
	}
	if !res.OK() {
		s.log("%s: status %s", m.name, res.Status)
		return model.Record{}, false
	}

	text, err := extract.VisibleText(res.Text())
	if err != nil {
		s.log("%s: parse page: %v", m.name, err)
		return model.Record{}, false
	}

	counts := s.extractor.Extract(text)
	if counts.Sons == nil && counts.Daughters == nil && s.assist != nil {
		assisted, err := s.assist.Children(ctx, text)
		if err != nil {
			s.log("%s: assist: %v", m.name, err)
		} else {
			counts = assisted
		}
	}

	extra := map[string]string{"source_url": m.url}
	for k, v := range s.extra {
		extra[k] = v
	}

	rec := s.norm.Record(model.Record{
		Name:      m.name,
		Sons:      counts.Sons,
		Daughters: counts.Daughters,
		Inferred:  counts.Inferred,
		Extra:     extra,
	})
	return rec, true
}

func (s *Biography) log(format string, args ...any) {
	if s.logf != nil {
		s.logf(format, args...)
	}
}

func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return ""
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}
