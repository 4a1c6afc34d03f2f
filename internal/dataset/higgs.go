package dataset

// Higgs is the Higgs Twitter dataset: four interaction networks and the
// activity log recorded around the 2012 Higgs boson announcement.
var Higgs = Network{
	Name: "Higgs Twitter",
	Slug: "higgs_twitter",
	Dir:  "higgs-twitter",
	Files: []NetworkFile{
		{Key: "social_network", Name: "higgs-social_network.edgelist", Kind: EdgeList},
		{Key: "retweet_network", Name: "higgs-retweet_network.edgelist", Kind: EdgeList},
		{Key: "reply_network", Name: "higgs-reply_network.edgelist", Kind: EdgeList},
		{Key: "mention_network", Name: "higgs-mention_network.edgelist", Kind: EdgeList},
		{Key: "activity_time", Name: "higgs-activity_time.txt", Kind: ActivityLog},
	},
}
