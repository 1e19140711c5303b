package launch

// Predicate - условие отбора записи
type Predicate func(Record) bool

// SiteIs matches records launched from site.
func SiteIs(site string) Predicate {
	return func(r Record) bool { return r.Site == site }
}

// ForSite turns a dropdown selection into a predicate: AllSites matches every
// record, any other value matches only that exact site id. Unknown ids and
// placeholder text therefore match nothing.
func ForSite(selection string) Predicate {
	if selection == AllSites {
		return func(Record) bool { return true }
	}
	return SiteIs(selection)
}

// Succeeded matches records with Class == Success.
func Succeeded() Predicate {
	return func(r Record) bool { return r.Class == Success }
}

// PayloadWithin matches records whose payload mass lies in rng (inclusive).
func PayloadWithin(rng PayloadRange) Predicate {
	return func(r Record) bool { return rng.Contains(r.PayloadMass) }
}
