package usecase

import (
	"fmt"

	"github.com/planachat/backend/internal/domain"
	"github.com/planachat/backend/internal/logger"
)

// ExtractionChain runs the extraction stages over one page:
// site recipe, then JSON-LD, then generic meta tags and price patterns.
// Each stage only fills the fields earlier stages left empty.
type ExtractionChain struct {
	sites *SiteRegistry
	log   logger.Logger
}

// NewExtractionChain creates a chain using the given site registry
func NewExtractionChain(sites *SiteRegistry, log logger.Logger) *ExtractionChain {
	if sites == nil {
		sites = DefaultSiteRegistry()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &ExtractionChain{sites: sites, log: log}
}

// Sites returns the registry used by the chain
func (c *ExtractionChain) Sites() *SiteRegistry {
	return c.sites
}

// Extract builds a product from page. link is the URL the caller asked for.
func (c *ExtractionChain) Extract(page *Page, link string) *domain.ExtractedProduct {
	var siteFields domain.ProductFields
	if key, extractor, ok := c.sites.Lookup(page.Host()); ok {
		siteFields = c.runStage("site:"+key, page, extractor.Extract)
	}

	fields := domain.MergeFields(
		siteFields,
		c.runStage("jsonld", page, ExtractFromJSONLD),
		c.runStage("meta", page, extractMetaFields),
	)

	product := &domain.ExtractedProduct{
		Name:        fields.Name,
		Price:       fields.Price,
		ImageURL:    fields.ImageURL,
		Description: fields.Description,
		Link:        link,
		Source:      domain.SourceFromHost(page.Host()),
	}
	if product.Name == "" {
		product.Name = domain.DefaultProductName
	}
	return product
}

// runStage executes one stage; a panicking stage counts as a stage that found nothing
func (c *ExtractionChain) runStage(
	name string,
	page *Page,
	stage func(*Page) domain.ProductFields,
) (fields domain.ProductFields) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Warn("Extraction stage panicked",
				logger.String("stage", name),
				logger.String("host", page.Host()),
				logger.String("panic", fmt.Sprint(r)),
			)
			fields = domain.ProductFields{}
		}
	}()
	return stage(page)
}
