package rewrite

// Fixed head fragments emitted by the site generator. They are matched
// byte for byte; once replaced they are gone, which is what makes a second
// run a no-op.
const (
	AdminHeadFragment = `<script type="module" src="/admin/preview-templates/index.js"></script>`
	SiteHeadFragment  = `<link rel="stylesheet" href="/assets/css/main.css"><script async="async" src="/assets/js/main.bundle.js"></script>`

	// ClosingMarkers is the anchor the footer script is inserted before.
	ClosingMarkers = `</body></html>`

	// BasePathGlobal carries the resolved base from the head bootstrap to
	// the footer rewriter within one page load.
	BasePathGlobal = "window.__BASE_PATH__"
)

// resolveBaseJS reads the two root attributes and leaves the resolved,
// slash-terminated base in `base` and in the page global.
const resolveBaseJS = `var d=document;` +
	`var attr=d.documentElement.getAttribute("data-base-path");var base="/";` +
	`var knownAttr=d.documentElement.getAttribute("data-known-roots");` +
	`var known=knownAttr?knownAttr.split(","):[];` +
	`if(attr&&attr!=="auto"){base=attr;}else{` +
	`var segments=location.pathname.split("/").filter(Boolean);` +
	`if(segments.length&&known.indexOf(segments[0])===-1){base="/"+segments[0]+"/";}}` +
	`if(base.slice(-1)!=="/"){base+="/";}` +
	BasePathGlobal + `=base;`

// AdminBootstrap replaces AdminHeadFragment.
const AdminBootstrap = `<script>(function(){` + resolveBaseJS +
	`var script=d.createElement("script");script.type="module";` +
	`script.src=base+"admin/preview-templates/index.js";d.head.appendChild(script);` +
	`}());</script>`

// SiteBootstrap replaces SiteHeadFragment. The noscript link keeps
// non-scripting clients styled from the un-prefixed path.
const SiteBootstrap = `<script>(function(){` + resolveBaseJS +
	`var baseEl=d.createElement("base");baseEl.href=base;d.head.appendChild(baseEl);` +
	`var link=d.createElement("link");link.rel="stylesheet";link.href=base+"assets/css/main.css";d.head.appendChild(link);` +
	`var script=d.createElement("script");script.async=true;script.src=base+"assets/js/main.bundle.js";d.head.appendChild(script);` +
	`}());</script>` +
	`<noscript><link rel="stylesheet" href="/assets/css/main.css"></noscript>`

func linkRewriterJS(trailingSlashes string) string {
	return `<script>(function(){var base=` + BasePathGlobal + `||"/";if(base==="/"){return;}` +
		`var normalized=base.replace(` + trailingSlashes + `,""),anchors=document.querySelectorAll("a[href^='/']");` +
		`for(var i=0;i<anchors.length;i++){var href=anchors[i].getAttribute("href");` +
		`if(!href||href[0]!=='/'||href[1]==='/'){continue;}` +
		`if(href==="/"){anchors[i].setAttribute("href",base);continue;}` +
		`if(href[1]==="#"){anchors[i].setAttribute("href",base+href.slice(1));continue;}` +
		`anchors[i].setAttribute("href",normalized+href);}` +
		`var forms=document.querySelectorAll("form[action^='/']");` +
		`for(var j=0;j<forms.length;j++){var action=forms[j].getAttribute("action");` +
		`if(!action||action[0]!=='/'||action[1]==='/'){continue;}` +
		`if(action==="/"){forms[j].setAttribute("action",base);continue;}` +
		`forms[j].setAttribute("action",normalized+action);} }());</script>`
}

var (
	// LinkRewriter is the footer script appended to site documents.
	LinkRewriter = linkRewriterJS(`/\/+$/`)

	// legacyLinkRewriter is the footer written by earlier releases. Its
	// regex literal lost its escape and reads as a line comment in the
	// browser, so the whole script failed to parse.
	legacyLinkRewriter = linkRewriterJS(`//+$/`)
)
