package poems

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/a-h/templ"

	"github.com/codr1/poemgrid/internal/catalog"
	"github.com/codr1/poemgrid/internal/wordgrid"
)

// PoemView is everything the poem page needs from one viewer session.
type PoemView struct {
	Poem        catalog.Poem
	SessionID   string
	SVG         string
	Legend      wordgrid.Legend
	Empty       bool
	AxisSpacePx float64
}

// PoemPage shows the full view, its legend and the hover tooltip. The script keeps
// the server informed of the viewport and swaps in re-rendered frames.
func PoemPage(view PoemView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<p><a href="/">&larr; All poems</a></p>`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, buildPoemHeaderHTML(view.Poem)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, buildGridHTML(view)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<div id="grid-tooltip" hidden></div>`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, buildLegendHTML(view)); err != nil {
			return err
		}
		_, err := io.WriteString(w, `<script>`+viewerScript+`</script>`)
		return err
	})
}

func buildPoemHeaderHTML(poem catalog.Poem) string {
	header := `<h1>` + templ.EscapeString(poem.Title) + `</h1>`
	if poem.BookTitle != "" {
		header += `<p><em>` + templ.EscapeString(poem.BookTitle) + `</em>`
		if poem.SourceURL != "" {
			header += ` &middot; <a href="` + templ.EscapeString(poem.SourceURL) + `">source</a>`
		}
		header += `</p>`
	}
	return header
}

func buildGridHTML(view PoemView) string {
	open := fmt.Sprintf(
		`<div id="word-grid" data-slug="%s" data-session="%s" data-axis="%g">`,
		templ.EscapeString(url.PathEscape(view.Poem.Slug)),
		templ.EscapeString(view.SessionID),
		view.AxisSpacePx,
	)
	if view.Empty {
		return open + `</div>`
	}
	return open + view.SVG + `</div>`
}

// buildLegendHTML leaves the legend blank only when no grid was drawn.
func buildLegendHTML(view PoemView) string {
	if view.Empty {
		return `<div id="grid-legend"></div>`
	}
	return `<div id="grid-legend">` + LegendHTML(view.Legend) + `</div>`
}

const viewerScript = `(function(){
var grid=document.getElementById('word-grid');
if(!grid){return;}
var slug=grid.dataset.slug,session=encodeURIComponent(grid.dataset.session);
var tooltip=document.getElementById('grid-tooltip'),legend=document.getElementById('grid-legend');
function esc(s){var d=document.createElement('div');d.textContent=s;return d.innerHTML;}
function renderLegend(entries){
if(!entries){legend.innerHTML='';return;}
legend.innerHTML='['+entries.map(function(e){
var style='color:'+e.color;if(e.background){style+=';background:'+e.background;}if(e.padding){style+=';padding:'+e.padding;}
return '<span style="'+esc(style)+'">'+esc(e.label)+'</span>';}).join(', ')+']';}
function reportViewport(){
fetch('/api/v1/viewer/'+slug+'/viewport?session='+session,{method:'POST',headers:{'Content-Type':'application/json'},
body:JSON.stringify({width:window.innerWidth,dpr:window.devicePixelRatio||1})});}
window.addEventListener('resize',reportViewport);
reportViewport();
var events=new EventSource('/api/v1/viewer/'+slug+'/events?session='+session);
events.addEventListener('frame',function(e){var f=JSON.parse(e.data);grid.innerHTML=f.empty?'':f.svg;renderLegend(f.empty?null:(f.legend||[]));});
var cellSeq=0;
grid.addEventListener('pointermove',function(e){
var svg=grid.querySelector('svg');if(!svg){return;}
var seq=++cellSeq;
var r=svg.getBoundingClientRect();
var q='x='+e.clientX+'&y='+e.clientY+'&left='+r.left+'&top='+r.top+'&width='+r.width;
fetch('/api/v1/poems/'+slug+'/cell?'+q).then(function(res){
if(seq!==cellSeq){return null;}
if(res.status!==200){tooltip.hidden=true;return null;}return res.text();}).then(function(text){
if(text===null||seq!==cellSeq){return;}
tooltip.textContent=text;tooltip.style.left=(e.pageX+10)+'px';tooltip.style.top=(e.pageY+10)+'px';tooltip.hidden=false;});});
grid.addEventListener('pointerleave',function(){cellSeq++;tooltip.hidden=true;});
})();`
