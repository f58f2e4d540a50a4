// Package exa is a typed client for the Exa search, contents, answer,
// research and websets APIs.
//
// Every operation is a single call through httpclient.Connection: parameters
// are encoded, the response is decoded, and failing statuses come back as
// *errors.APIError. Webset and webset search creation are validated locally
// first and fail with *errors.ValidationError before any network traffic.
//
//	client, err := exa.New(os.Getenv("EXA_API_KEY"))
//	if err != nil {
//	    return err
//	}
//	resp, err := client.Search(ctx, exa.SearchParams{Query: "hottest AI startups"})
//
// Long-running work (research tasks, webset searches) can be awaited with
// Research.PollUntilFinished and Websets.WaitUntilIdle, which poll with
// exponential backoff until a terminal status or a deadline.
package exa
