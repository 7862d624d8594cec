package review

// BadgeCategory selects which status vocabulary a raw value belongs to.
type BadgeCategory string

// BadgeCategory constants.
const (
	CategoryProcessing BadgeCategory = "processing"
	CategoryCheck      BadgeCategory = "check"
	CategoryReview     BadgeCategory = "review"
	CategoryOwnership  BadgeCategory = "ownership"
)

// Badge is the fixed presentation tuple for a status value.
type Badge struct {
	Color       string `json:"color"`
	Label       string `json:"label"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

var processingBadges = map[string]Badge{
	"uploaded":             {Color: "blue", Label: "Uploaded", Icon: "upload", Description: "Video received, queued for stats fetch"},
	"fetching_stats":       {Color: "blue", Label: "Fetching Stats", Icon: "refresh", Description: "Pulling view and engagement counts from the provider"},
	"checking_hashtags":    {Color: "blue", Label: "Checking Hashtags", Icon: "hash", Description: "Verifying required contest hashtags"},
	"checking_description": {Color: "blue", Label: "Checking Description", Icon: "text", Description: "Verifying the description template"},
	"waiting_review":       {Color: "yellow", Label: "Waiting Review", Icon: "clock", Description: "Automated checks done, awaiting human review"},
	"approved":             {Color: "green", Label: "Approved", Icon: "check", Description: "Processing complete"},
}

var checkBadges = map[string]Badge{
	"pending":         {Color: "gray", Label: "Pending", Icon: "clock", Description: "Check not yet run"},
	"pass":            {Color: "green", Label: "Pass", Icon: "check", Description: "Automated check passed"},
	"fail":            {Color: "red", Label: "Fail", Icon: "x", Description: "Automated check failed"},
	"pending_review":  {Color: "yellow", Label: "Pending Review", Icon: "eye", Description: "Flagged for manual review"},
	"approved_manual": {Color: "green", Label: "Pass", Icon: "check-circle", Description: "Approved manually by an admin"},
}

var reviewBadges = map[string]Badge{
	"pending":  {Color: "yellow", Label: "Pending", Icon: "clock", Description: "Awaiting content review"},
	"approved": {Color: "green", Label: "Approved", Icon: "check", Description: "Content approved"},
	"rejected": {Color: "red", Label: "Rejected", Icon: "x", Description: "Content rejected"},
}

var ownershipBadges = map[string]Badge{
	"pending":   {Color: "gray", Label: "Pending", Icon: "clock", Description: "Ownership not yet verified"},
	"verified":  {Color: "green", Label: "Verified", Icon: "shield-check", Description: "Account confirmed as video owner"},
	"failed":    {Color: "red", Label: "Failed", Icon: "shield-x", Description: "Ownership verification failed"},
	"contested": {Color: "orange", Label: "Contested", Icon: "alert", Description: "Ownership is disputed"},
}

// BadgeFor maps any raw status string to its badge. The mapping is total:
// values the server grows that this build has never seen degrade to a
// neutral gray badge echoing the raw string, so rendering never breaks on
// an unknown status.
func BadgeFor(raw string, category BadgeCategory) Badge {
	var table map[string]Badge
	switch category {
	case CategoryProcessing:
		table = processingBadges
	case CategoryCheck:
		table = checkBadges
	case CategoryReview:
		table = reviewBadges
	case CategoryOwnership:
		table = ownershipBadges
	}

	if table != nil {
		if b, ok := table[raw]; ok {
			return b
		}
	}

	return Badge{Color: "gray", Label: raw, Icon: "help", Description: "Unrecognized status"}
}
