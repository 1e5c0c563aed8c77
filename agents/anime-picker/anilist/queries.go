package anilist

const mediaFields = `
fragment mediaFields on Media {
  id
  title { romaji english native }
  format
  status
  episodes
  genres
  siteUrl
  averageScore
  description(asHtml: false)
  trailer { id site }
  studios(isMain: true) { nodes { name } }
  tags { name }
  relations { edges { node { id } } }
  nextAiringEpisode { airingAt timeUntilAiring episode }
}
`

const listQuery = `
query ($username: String) {
  MediaListCollection(userName: $username, type: ANIME) {
    lists {
      name
      entries {
        status
        score
        progress
        startedAt { year month day }
        completedAt { year month day }
        media { ...mediaFields }
      }
    }
  }
}
` + mediaFields

const trendingQuery = `
query ($perPage: Int) {
  Page(page: 1, perPage: $perPage) {
    pageInfo { lastPage }
    media(type: ANIME, sort: TRENDING_DESC, isAdult: false) { ...mediaFields }
  }
}
` + mediaFields

const pageCountQuery = `
query ($perPage: Int) {
  Page(page: 1, perPage: $perPage) {
    pageInfo { lastPage }
    media(type: ANIME, isAdult: false) { id }
  }
}
`

const pageQuery = `
query ($page: Int, $perPage: Int) {
  Page(page: $page, perPage: $perPage) {
    pageInfo { lastPage }
    media(type: ANIME, isAdult: false) { ...mediaFields }
  }
}
` + mediaFields
