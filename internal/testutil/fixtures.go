package testutil

// Sample JSON responses for API testing

// SamplePredictionsResponse is a predictions payload for Metro Center with
// trains in both directions, token minutes and one train without a time.
const SamplePredictionsResponse = `{
	"Trains": [
		{
			"Car": "8",
			"Destination": "Glenmont",
			"DestinationCode": "B11",
			"DestinationName": "Glenmont",
			"Group": "1",
			"Line": "RD",
			"LocationCode": "A01",
			"LocationName": "Metro Center",
			"Min": "ARR"
		},
		{
			"Car": "8",
			"Destination": "Shady Gr",
			"DestinationCode": "A15",
			"DestinationName": "Shady Grove",
			"Group": "2",
			"Line": "RD",
			"LocationCode": "A01",
			"LocationName": "Metro Center",
			"Min": "3"
		},
		{
			"Car": "6",
			"Destination": "Largo",
			"DestinationCode": "G05",
			"DestinationName": "Largo Town Center",
			"Group": "1",
			"Line": "BL",
			"LocationCode": "C01",
			"LocationName": "Metro Center",
			"Min": "BRD"
		},
		{
			"Car": "8",
			"Destination": "Vienna",
			"DestinationCode": "K08",
			"DestinationName": "Vienna/Fairfax-GMU",
			"Group": "2",
			"Line": "OR",
			"LocationCode": "C01",
			"LocationName": "Metro Center",
			"Min": "7"
		},
		{
			"Car": "-",
			"Destination": "Ashburn",
			"DestinationCode": "N12",
			"DestinationName": "Ashburn",
			"Group": "2",
			"Line": "SV",
			"LocationCode": "C01",
			"LocationName": "Metro Center",
			"Min": "---"
		}
	]
}`

// SampleNumericMinutesResponse serves Min as a JSON number
const SampleNumericMinutesResponse = `{
	"Trains": [
		{"Car": "6", "DestinationName": "New Carrollton", "Group": "1", "Line": "OR", "LocationCode": "C01", "Min": 12}
	]
}`

// SampleEmptyPredictionsResponse has no trains
const SampleEmptyPredictionsResponse = `{"Trains": []}`

// SampleMalformedPredictionsResponse fails to decode on its second train
const SampleMalformedPredictionsResponse = `{
	"Trains": [
		{"DestinationName": "Glenmont", "Line": "RD", "Min": "4"},
		{"DestinationName": ["not", "a", "string"], "Line": "RD", "Min": "6"}
	]
}`

// SampleUnauthorizedResponse is the body returned for a missing or bad key
const SampleUnauthorizedResponse = `{
	"statusCode": 401,
	"message": "Access denied due to invalid subscription key. Make sure to provide a valid key for an active subscription."
}`
