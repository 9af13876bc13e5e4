package feeds

import "time"

// Source is a named RSS endpoint. The set is static; rotation decides
// which two are polled on a given day.
type Source struct {
	Key  string
	Name string
	URL  string
}

// Sources is the full universe of feeds the pipeline knows about.
// Keys are referenced by the rotation table below.
var Sources = map[string]Source{
	"blabbermouth":        {Key: "blabbermouth", Name: "Blabbermouth", URL: "https://blabbermouth.net/feed"},
	"loudwire":            {Key: "loudwire", Name: "Loudwire", URL: "https://loudwire.com/feed/"},
	"metalinjection":      {Key: "metalinjection", Name: "Metal Injection", URL: "https://metalinjection.net/feed"},
	"metalhammer":         {Key: "metalhammer", Name: "Metal Hammer", URL: "https://www.loudersound.com/feeds/metal-hammer"},
	"kerrang":             {Key: "kerrang", Name: "Kerrang!", URL: "https://www.kerrang.com/feed"},
	"revolver":            {Key: "revolver", Name: "Revolver", URL: "https://www.revolvermag.com/rss.xml"},
	"consequence":         {Key: "consequence", Name: "Consequence", URL: "https://consequence.net/feed/"},
	"rollingstone":        {Key: "rollingstone", Name: "Rolling Stone Music News", URL: "https://www.rollingstone.com/music/music-news/feed/"},
	"ultimateclassicrock": {Key: "ultimateclassicrock", Name: "Ultimate Classic Rock", URL: "https://ultimateclassicrock.com/feed/"},
	"nme":                 {Key: "nme", Name: "NME Music News", URL: "https://www.nme.com/news/music/feed"},
}

// rotation maps time.Weekday (0 = Sunday) to the two feed keys polled that
// day. The asymmetry is deliberate: the high-volume sources (blabbermouth,
// loudwire, metalinjection) are polled three days a week, the rest at most
// once, which caps daily AI token spend at two feeds' worth of entries.
var rotation = [7][2]string{
	time.Sunday:    {"metalinjection", "rollingstone"},
	time.Monday:    {"blabbermouth", "loudwire"},
	time.Tuesday:   {"metalinjection", "metalhammer"},
	time.Wednesday: {"blabbermouth", "kerrang"},
	time.Thursday:  {"loudwire", "revolver"},
	time.Friday:    {"blabbermouth", "metalinjection"},
	time.Saturday:  {"loudwire", "consequence"},
}

// ForDay returns the two sources to poll on the given weekday.
func ForDay(day time.Weekday) [2]Source {
	keys := rotation[day]
	return [2]Source{Sources[keys[0]], Sources[keys[1]]}
}

// Keys returns the rotation entry for a weekday without resolving URLs.
func Keys(day time.Weekday) [2]string {
	return rotation[day]
}
