package models

// Bill is a state bill as returned by the bills proxy.
type Bill struct {
	ID               string   `json:"id"`
	BillNumber       string   `json:"billNumber"`
	Title            string   `json:"title"`
	Session          string   `json:"session"`
	Jurisdiction     string   `json:"jurisdiction"`
	Classification   []string `json:"classification"`
	Subjects         []string `json:"subjects"`
	LatestAction     string   `json:"latestAction"`
	LatestActionDate string   `json:"latestActionDate"`
	URL              string   `json:"url"`
}

// VoteCount is one option tally of a roll call.
type VoteCount struct {
	Option string `json:"option"`
	Value  int    `json:"value"`
}

// Vote is a roll call attached to a bill.
type Vote struct {
	ID         string      `json:"id"`
	BillID     string      `json:"billId"`
	BillNumber string      `json:"billNumber"`
	Motion     string      `json:"motion"`
	Date       string      `json:"date"`
	Result     string      `json:"result"`
	Chamber    string      `json:"chamber"`
	Counts     []VoteCount `json:"counts"`
}

// Legislator is a current state legislator.
type Legislator struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Party    string `json:"party"`
	Title    string `json:"title"`
	Chamber  string `json:"chamber"`
	District string `json:"district"`
	Email    string `json:"email"`
	PhotoURL string `json:"photoUrl"`
	URL      string `json:"url"`
}

// Committee is a legislative committee or subcommittee.
type Committee struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Classification string `json:"classification"`
	Chamber        string `json:"chamber"`
	ParentID       string `json:"parentId"`
	MemberCount    int    `json:"memberCount"`
}

// FederalBill is a bill from Congress.gov.
type FederalBill struct {
	ID               string `json:"id"`
	BillNumber       string `json:"billNumber"`
	Title            string `json:"title"`
	Congress         int    `json:"congress"`
	OriginChamber    string `json:"originChamber"`
	LatestAction     string `json:"latestAction"`
	LatestActionDate string `json:"latestActionDate"`
	URL              string `json:"url"`
}

// Regulation is a Federal Register document.
type Regulation struct {
	ID              string   `json:"id"`
	DocumentNumber  string   `json:"documentNumber"`
	Title           string   `json:"title"`
	Abstract        string   `json:"abstract"`
	Type            string   `json:"type"`
	Agencies        []string `json:"agencies"`
	PublicationDate string   `json:"publicationDate"`
	URL             string   `json:"url"`
}

// CourtCase is a CourtListener opinion cluster.
type CourtCase struct {
	ID           string `json:"id"`
	CaseName     string `json:"caseName"`
	Court        string `json:"court"`
	DocketNumber string `json:"docketNumber"`
	DateFiled    string `json:"dateFiled"`
	Snippet      string `json:"snippet"`
	URL          string `json:"url"`
}

// LobbyingFiling is a Senate LDA disclosure filing.
type LobbyingFiling struct {
	ID         string   `json:"id"`
	Registrant string   `json:"registrant"`
	Client     string   `json:"client"`
	FilingType string   `json:"filingType"`
	Period     string   `json:"period"`
	Year       int      `json:"year"`
	Amount     float64  `json:"amount"`
	Issues     []string `json:"issues"`
	Posted     string   `json:"posted"`
	URL        string   `json:"url"`
}
