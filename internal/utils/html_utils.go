package utils

import (
	"html/template"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// EnhanceHTMLContent 处理作者写的文章 HTML：相对链接按站点地址补全，图片懒加载，外链新窗口打开
func EnhanceHTMLContent(htmlStr, siteURL string) template.HTML {
	if htmlStr == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return template.HTML(htmlStr)
	}

	base, _ := url.Parse(strings.TrimRight(siteURL, "/") + "/")

	doc.Find("img").Each(func(i int, s *goquery.Selection) {
		s.SetAttr("loading", "lazy")
		s.SetAttr("referrerpolicy", "no-referrer")
		if src, ok := s.Attr("src"); ok {
			s.SetAttr("src", absolute(base, src))
		}
	})

	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		abs := absolute(base, href)
		s.SetAttr("href", abs)
		if base != nil && isExternal(base, abs) {
			s.SetAttr("target", "_blank")
			s.SetAttr("rel", "noopener noreferrer")
		}
	})

	// goquery renders full document tags if missing, we just want the body content
	html, _ := doc.Find("body").Html()
	if html == "" {
		html, _ = doc.Html()
	}

	return template.HTML(html)
}

func absolute(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if base == nil || ref == "" || strings.HasPrefix(ref, "#") {
		return ref
	}
	u, err := url.Parse(ref)
	if err != nil || u.IsAbs() || strings.HasPrefix(ref, "//") {
		return ref
	}
	return base.ResolveReference(u).String()
}

func isExternal(base *url.URL, ref string) bool {
	u, err := url.Parse(ref)
	if err != nil || u.Host == "" {
		return false
	}
	return !strings.EqualFold(u.Host, base.Host)
}
