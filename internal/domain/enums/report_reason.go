package enums

type ReportReason string

const (
	ReportReasonSpam          ReportReason = "spam"
	ReportReasonFake          ReportReason = "fake"
	ReportReasonInappropriate ReportReason = "inappropriate"
	ReportReasonHarassment    ReportReason = "harassment"
	ReportReasonOther         ReportReason = "other"
)

func (r ReportReason) Valid() bool {
	switch r {
	case ReportReasonSpam, ReportReasonFake, ReportReasonInappropriate, ReportReasonHarassment, ReportReasonOther:
		return true
	default:
		return false
	}
}
