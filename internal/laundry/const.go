// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package laundry

// DefaultEndpoint is the vendor's single request handler.
const DefaultEndpoint = "https://mapp.mylaundrylink.com/AppRequestHandler.aspx"

// Wire header names. The vendor matches them case-sensitively.
const (
	RequestIDHeader = "CP_REQ_ID"
	AuthTokenHeader = "CP_AUTH_TOKEN" // #nosec G101 -- header name, not a credential
)

// Commands understood by the vendor endpoint.
const (
	CommandAuthenticate   = "Authenticate2"
	CommandAdditionalInfo = "GetAdditionalInformation"
	CommandRefresh        = "ConsolidatedRefresh"
	CommandVendPrice      = "GetVendPrice"
	CommandVirtualVend    = "VirtualVend"
	CommandVendLog        = "CreateVendLogEntry"
)

const (
	appKey = "$#!@ES(*#D3$!318z" // #nosec G101 -- public app identifier

	// userTokenSuffix is appended to the user id before hashing into the user token.
	userTokenSuffix = "b1c/B?D(G+1bPeSh" // #nosec G101

	// deviceFingerprint is the device description the vendor app sends on login.
	deviceFingerprint = `{"droidDisplay":"LMY47E","droidBrand":"Android","droidProduct":"sdk_phone_x86","droidDevice":"shamu","droidManufacturer":"motorola","droidModel":"Nexus 6","droidHardware":"ranchu","droidSDK":28,"droidVersionRelease":"9","droidVersionIncremental":"4923214","droidVersionCodeName":"REL","droidIsRooted":false,"droidAppVersion":"4.09","droidAppBundleID":"com.esd.laundrylink.hercules"}`

	// vendLogTimeLayout matches the vendor app's "2006-01-02 15:04:05.000000+00:00" stamps.
	vendLogTimeLayout = "2006-01-02 15:04:05.000000-07:00"
)

// Response body keys.
const (
	keyResultCode   = "ResultCode"
	keyResultText   = "ResultText"
	keyBundle       = "Bundle"
	keyCardInfo     = "CardInformation"
	keyMachinesInfo = "MachinesInformation"
	keyMachines     = "Machines"
)
