package wordgrid

// extraNamedColors holds CSS keywords missing from the SVG 1.1 keyword table.
var extraNamedColors = map[string][3]uint8{
	"rebeccapurple": {0x66, 0x33, 0x99},
}

// systemColors are the CSS system color keywords, including the deprecated CSS2
// set browsers still accept. Values follow the light color scheme defaults.
var systemColors = map[string][3]uint8{
	"activetext":          {0xff, 0x00, 0x00},
	"buttonborder":        {0x76, 0x76, 0x76},
	"buttonface":          {0xef, 0xef, 0xef},
	"buttontext":          {0x00, 0x00, 0x00},
	"canvas":              {0xff, 0xff, 0xff},
	"canvastext":          {0x00, 0x00, 0x00},
	"field":               {0xff, 0xff, 0xff},
	"fieldtext":           {0x00, 0x00, 0x00},
	"graytext":            {0x6d, 0x6d, 0x6d},
	"highlight":           {0xb5, 0xd5, 0xff},
	"highlighttext":       {0x00, 0x00, 0x00},
	"linktext":            {0x00, 0x00, 0xee},
	"mark":                {0xff, 0xff, 0x00},
	"marktext":            {0x00, 0x00, 0x00},
	"visitedtext":         {0x55, 0x1a, 0x8b},
	"activeborder":        {0xff, 0xff, 0xff},
	"activecaption":       {0xcc, 0xcc, 0xcc},
	"appworkspace":        {0xff, 0xff, 0xff},
	"background":          {0x63, 0x63, 0xce},
	"buttonhighlight":     {0xdd, 0xdd, 0xdd},
	"buttonshadow":        {0x88, 0x88, 0x88},
	"captiontext":         {0x00, 0x00, 0x00},
	"inactiveborder":      {0xff, 0xff, 0xff},
	"inactivecaption":     {0xff, 0xff, 0xff},
	"inactivecaptiontext": {0x80, 0x80, 0x80},
	"infobackground":      {0xfb, 0xfc, 0xc5},
	"infotext":            {0x00, 0x00, 0x00},
	"menu":                {0xf7, 0xf7, 0xf7},
	"menutext":            {0x00, 0x00, 0x00},
	"scrollbar":           {0xff, 0xff, 0xff},
	"threeddarkshadow":    {0x66, 0x66, 0x66},
	"threedface":          {0xc0, 0xc0, 0xc0},
	"threedhighlight":     {0xdd, 0xdd, 0xdd},
	"threedlightshadow":   {0xc0, 0xc0, 0xc0},
	"threedshadow":        {0x88, 0x88, 0x88},
	"window":              {0xff, 0xff, 0xff},
	"windowframe":         {0xcc, 0xcc, 0xcc},
	"windowtext":          {0x00, 0x00, 0x00},
}
