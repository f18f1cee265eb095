package at

// Demo command identifiers exercised by cmd/atgatewayd (§3, "closed
// enumeration known at build time"). Basic commands occupy the low end of
// the domain, extended commands the high end, matching NewTable's required
// layout. CMTI and CDSI are never sent — they exist only so
// RegisterUnsolicited has a CommandID to name the unsolicited notifications
// 3GPP 27.005 defines for incoming and delivered SMS.
const (
	CmdAT CommandID = iota
	CmdEchoOff
	CmdEchoOn

	CmdReportMobileError
	CmdSIMPIN
	CmdMessageFormat
	CmdCharacterSet
	CmdSendMessage
	CmdSignalQuality
	CmdNetworkRegistration
	CmdIncomingMessage
	CmdDeliveryReport
)

// DefaultTable builds the command table bundled with cmd/atgatewayd.
func DefaultTable() *Table {
	return NewTable([]Def{
		CmdAT:                  {Name: "", Extended: false},
		CmdEchoOff:             {Name: "E0", Extended: false},
		CmdEchoOn:              {Name: "E1", Extended: false},
		CmdReportMobileError:   {Name: "CMEE", Extended: true},
		CmdSIMPIN:              {Name: "CPIN", Extended: true},
		CmdMessageFormat:       {Name: "CMGF", Extended: true},
		CmdCharacterSet:        {Name: "CSCS", Extended: true},
		CmdSendMessage:         {Name: "CMGS", Extended: true},
		CmdSignalQuality:       {Name: "CSQ", Extended: true},
		CmdNetworkRegistration: {Name: "CREG", Extended: true},
		CmdIncomingMessage:     {Name: "CMTI", Extended: true},
		CmdDeliveryReport:      {Name: "CDSI", Extended: true},
	})
}
